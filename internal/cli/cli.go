// Package cli parses the iconforge command line into a domain.Request.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dunamismax/iconforge/internal/colorname"
	"github.com/dunamismax/iconforge/internal/domain"
)

// Parse reads argv (without the program name). A flag.ErrHelp result means
// help was requested, not a usage mistake.
func Parse(args []string, stderr io.Writer) (domain.Request, error) {
	fs := flag.NewFlagSet("iconforge", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		input  = fs.String("input", "", "path to the source image (png, jpeg, gif, webp, bmp, tiff)")
		output = fs.String("output", "", "directory to write outputs into")
		mode   = fs.String("mode", domain.ModeContain, "square handling: contain pads, cover center-crops")
		bg     = fs.String("bg", "transparent", "contain-mode padding color: transparent, #rrggbb[aa], or a CSS name")
		sizes  = fs.String("sizes", "", "comma-separated icon sizes in px (default 16,32,48,128)")
		round  = fs.Bool("round", false, "round the icon corners")
		noZip  = fs.Bool("no-zip", false, "skip writing icons_bundle.zip")
	)
	fs.StringVar(input, "i", "", "shorthand for -input")
	fs.StringVar(output, "o", "", "shorthand for -output")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: iconforge -i SOURCE -o OUTDIR [flags]")
		fmt.Fprintln(stderr, "example: iconforge -i face.png -o ./icons -mode cover -sizes 16,32,48,128 -round")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "exit codes: 0 ok, 2 bad arguments, 3 decode failure, 4 invalid image, 5 write failure")
	}

	if err := fs.Parse(args); err != nil {
		return domain.Request{}, err
	}
	if fs.NArg() > 0 {
		return domain.Request{}, fmt.Errorf("unexpected positional arguments: %s", strings.Join(fs.Args(), " "))
	}

	req := domain.Request{
		InputPath: strings.TrimSpace(*input),
		OutputDir: strings.TrimSpace(*output),
		Mode:      strings.ToLower(strings.TrimSpace(*mode)),
		Round:     *round,
		Archive:   !*noZip,
	}

	parsedSizes, err := parseSizes(*sizes)
	if err != nil {
		return domain.Request{}, err
	}
	req.Sizes = parsedSizes

	if !strings.EqualFold(strings.TrimSpace(*bg), "transparent") {
		c, err := colorname.Parse(*bg)
		if err != nil {
			return domain.Request{}, fmt.Errorf("invalid -bg value: %w", err)
		}
		req.Background = &c
	}

	if err := req.Validate(); err != nil {
		return domain.Request{}, err
	}
	return req, nil
}

func parseSizes(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return append([]int(nil), domain.DefaultSizes...), nil
	}

	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: must be a positive integer", part)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, errors.New("sizes list is empty")
	}
	return sizes, nil
}

// Command rewrite prints the static file each request path resolves to.
//
//	rewrite /admin/ /admin/access-rules/rul_29kaLgLmxb7b8rAcy4YuE9bROTx
//	cat paths.txt | rewrite -v
//	rewrite function > fix-uri.js
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"approvals-web/rewrite"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "rewrite",
		Usage:     "prints the static file each request path resolves to, reading stdin when no paths are given",
		ArgsUsage: "[path...]",
		Reader:    stdin,
		Writer:    stdout,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "v",
				Aliases: []string{"verbose"},
				Usage:   "print the rule that applied",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "function",
				Usage: "prints the CloudFront Function source",
				Action: func(ctx *cli.Context) error {
					_, err := io.WriteString(ctx.App.Writer, rewrite.FunctionSource())
					return err
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			verbose := ctx.Bool("v")
			if ctx.NArg() == 0 {
				return rewriteLines(ctx.App.Reader, ctx.App.Writer, verbose)
			}
			for _, p := range ctx.Args().Slice() {
				printRewrite(ctx.App.Writer, p, verbose)
			}
			return nil
		},
	}
}

func rewriteLines(r io.Reader, w io.Writer, verbose bool) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p := strings.TrimSpace(sc.Text())
		if p == "" {
			continue
		}
		printRewrite(w, p, verbose)
	}
	return sc.Err()
}

func printRewrite(w io.Writer, p string, verbose bool) {
	res := rewrite.Rewrite(p)
	if verbose {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p, res.Path, res.Rule)
		return
	}
	fmt.Fprintf(w, "%s\t%s\n", p, res.Path)
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/pkg/manifest"
	"github.com/vango-dev/fsroutes/pkg/router"
)

func printCmd() *cobra.Command {
	var (
		query string
		tree  bool
	)

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the generated routes",
		Long: `Generate routes and print them without writing the manifest.

--query selects part of the JSON manifest with a GJSON path.
--tree prints an indented tree instead of JSON.

Examples:
  fsroutes print
  fsroutes print --tree
  fsroutes print --query '0.children.#.name'
  fsroutes print --query '..#(name=="newsId")'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(cmd.Context(), cmd.OutOrStdout(), query, tree)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "GJSON path to select from the manifest")
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "Print an indented route tree")

	return cmd
}

func runPrint(ctx context.Context, w io.Writer, query string, tree bool) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	defer p.closeHooks()

	opts, err := p.routerOptions()
	if err != nil {
		return err
	}

	routes, err := p.generate(ctx, opts)
	if err != nil {
		return err
	}

	if tree {
		printTree(w, routes, p.encodeOptions())
		return nil
	}

	data, err := manifest.Encode(routes, p.encodeOptions())
	if err != nil {
		return errors.New("E402").Wrap(err)
	}

	if query == "" {
		_, err = w.Write(data)
		return err
	}

	result, ok := manifest.Query(data, query)
	if !ok {
		return errors.New("E403").WithDetail("No value at path " + query)
	}
	fmt.Fprintln(w, result)
	return nil
}

// printTree writes one line per route, children indented under their parent:
//
//	/              root       /src/views/page.tsx
//	  /news        news       /src/views/news/page.tsx
func printTree(w io.Writer, routes []*router.Route, opts manifest.EncodeOptions) {
	writeTree(w, routes, nil, 0, opts)
}

func writeTree(w io.Writer, routes []*router.Route, parent *router.Route, depth int, opts manifest.EncodeOptions) {
	for _, r := range routes {
		path := r.Path
		if opts.RelativeChildren {
			path = r.RelativePath(parent)
		}
		fmt.Fprintf(w, "%-40s %-24s %s\n",
			strings.Repeat("  ", depth)+path,
			r.Name,
			manifest.ComponentString(r.Component))
		writeTree(w, r.Children, r, depth+1, opts)
	}
}

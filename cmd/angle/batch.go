package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/midbel/cli"
	"github.com/midbel/angle/xpath"
	"golang.org/x/sync/errgroup"
)

var batchCmd = cli.Command{
	Name:    "batch",
	Summary: "run one xpath query against many documents concurrently",
	Handler: &BatchCmd{},
}

type BatchCmd struct {
	Jobs  bool
	Limit int
	QueryOptions
}

type batchResult struct {
	File  string
	Count int
}

func (b *BatchCmd) Run(args []string) error {
	set := flag.NewFlagSet("batch", flag.ContinueOnError)
	set.IntVar(&b.Limit, "jobs", 4, "number of documents processed concurrently")
	set.BoolVar(&b.Xpath1, "xpath1", false, "compile with the xpath 1.0 grammar")
	set.Func("ns", "register a namespace as prefix=uri", b.Namespace)
	set.Func("define", "define a variable as name=value", b.Variable)
	if err := set.Parse(args); err != nil {
		return err
	}
	files := set.Args()
	if len(files) < 2 {
		return fmt.Errorf("usage: batch <query> <file...>")
	}
	sel, err := xpath.Compile(files[0], b.Options()...)
	if err != nil {
		return err
	}
	files = files[1:]

	var (
		grp     errgroup.Group
		mu      sync.Mutex
		results []batchResult
	)
	grp.SetLimit(max(b.Limit, 1))
	for _, file := range files {
		grp.Go(func() error {
			doc, err := parseDocument(file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			seq, err := sel.Select(doc)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			mu.Lock()
			defer mu.Unlock()
			results = append(results, batchResult{
				File:  file,
				Count: seq.Len(),
			})
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].File < results[j].File
	})
	var total int
	for _, r := range results {
		fmt.Fprintf(os.Stdout, "%s: %d item(s)\n", r.File, r.Count)
		total += r.Count
	}
	fmt.Fprintf(os.Stdout, "%d item(s) over %d document(s)\n", total, len(results))
	if total == 0 {
		return errFail
	}
	return nil
}

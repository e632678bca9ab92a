package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/midbel/cli"
	"github.com/midbel/angle/xpath"
)

var queryCmd = cli.Command{
	Name:    "query",
	Alias:   []string{"exec"},
	Summary: "run an xpath query against an xml document",
	Handler: &QueryCmd{},
}

var scanCmd = cli.Command{
	Name:    "scan",
	Summary: "print the token stream of an xpath expression",
	Handler: &ScanCmd{},
}

type QueryCmd struct {
	Noout bool
	Text  bool
	Limit int
	QueryOptions
}

const queryInfo = "query took %s - %d items matching %q"

func (q *QueryCmd) Run(args []string) error {
	set := flag.NewFlagSet("query", flag.ContinueOnError)
	set.BoolVar(&q.Noout, "quiet", false, "suppress output - default is to print the result nodes")
	set.BoolVar(&q.Text, "text", false, "print only value of node")
	set.BoolVar(&q.Xpath1, "xpath1", false, "compile with the xpath 1.0 grammar")
	set.BoolVar(&q.Compat, "compat", false, "xpath 1.0 compatibility mode")
	set.BoolVar(&q.Strict, "strict", true, "strict name and function resolution")
	set.IntVar(&q.Limit, "limit", 0, "limit number of results returned by query")
	set.Func("ns", "register a namespace as prefix=uri", q.Namespace)
	set.Func("define", "define a variable as name=value", q.Variable)
	if err := set.Parse(args); err != nil {
		return err
	}
	doc, err := parseDocument(set.Arg(1))
	if err != nil {
		return err
	}
	now := time.Now()
	query, err := xpath.BuildWith(set.Arg(0), q.Options()...)
	if err != nil {
		return err
	}
	results, err := query.Find(doc)
	if err != nil {
		return err
	}
	elapsed := time.Since(now)
	if q.Limit > 0 && results.Len() > q.Limit {
		results = results[:q.Limit]
	}
	if !q.Noout {
		if q.Text {
			printValues(results)
		} else {
			printNodes(results)
		}
	}
	fmt.Fprintf(os.Stdout, queryInfo, elapsed, results.Len(), set.Arg(0))
	fmt.Fprintln(os.Stdout)
	if results.Len() == 0 {
		return errFail
	}
	return nil
}

type ScanCmd struct {
	QueryOptions
}

func (s *ScanCmd) Run(args []string) error {
	set := flag.NewFlagSet("scan", flag.ContinueOnError)
	set.BoolVar(&s.Xpath1, "xpath1", false, "scan with the xpath 1.0 keyword table")
	if err := set.Parse(args); err != nil {
		return err
	}
	scan := xpath.NewScanner(strings.NewReader(set.Arg(0)), s.Version())
	for {
		tok := scan.Scan()
		fmt.Fprintln(os.Stdout, tok)
		if tok.Type == xpath.EOF || tok.Type == xpath.Invalid {
			break
		}
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/midbel/angle/xml"
	"github.com/midbel/angle/xpath"
)

// QueryOptions are the flags shared by the commands that compile an
// expression.
type QueryOptions struct {
	Xpath1 bool
	Compat bool
	Strict bool

	namespaces map[string]string
	variables  map[string]string
}

func (q *QueryOptions) Namespace(value string) error {
	prefix, uri, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("%s: prefix=uri expected", value)
	}
	if q.namespaces == nil {
		q.namespaces = make(map[string]string)
	}
	q.namespaces[prefix] = uri
	return nil
}

func (q *QueryOptions) Variable(value string) error {
	ident, val, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("%s: name=value expected", value)
	}
	if q.variables == nil {
		q.variables = make(map[string]string)
	}
	q.variables[ident] = val
	return nil
}

func (q *QueryOptions) Options() []xpath.Option {
	var options []xpath.Option
	if q.Xpath1 {
		options = append(options, xpath.WithVersion(xpath.Xpath1))
	}
	if q.Compat {
		options = append(options, xpath.WithCompatibilityMode())
	}
	options = append(options, xpath.WithStrict(q.Strict))
	for prefix, uri := range q.namespaces {
		options = append(options, xpath.WithNamespace(prefix, uri))
	}
	for ident, val := range q.variables {
		options = append(options, xpath.WithVariable(ident, val))
	}
	return options
}

func (q *QueryOptions) Version() xpath.Version {
	if q.Xpath1 {
		return xpath.Xpath1
	}
	return xpath.Xpath2
}

func parseDocument(file string) (*xml.Document, error) {
	r, err := openFile(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	p := xml.NewParser(r)
	p.OmitProlog = true
	return p.Parse()
}

func openFile(file string) (io.ReadCloser, error) {
	u, err := url.Parse(file)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequest(http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("accept", "text/xml")
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fail to retrieve remote file")
		}
		return res.Body, nil
	default:
		return os.Open(file)
	}
}

func printNodes(results xpath.Sequence) {
	for i := range results {
		if results[i].Atomic() {
			fmt.Fprintln(os.Stdout, stringifyItem(results[i]))
			continue
		}
		fmt.Fprintln(os.Stdout, xml.WriteNode(results[i].Node()))
	}
}

func printValues(results xpath.Sequence) {
	for i := range results {
		if results[i].Atomic() {
			fmt.Fprintln(os.Stdout, stringifyItem(results[i]))
			continue
		}
		fmt.Fprintln(os.Stdout, results[i].Node().Value())
	}
}

func stringifyItem(item xpath.Item) string {
	seq := xpath.Singleton(item)
	return seq.Stringify()
}

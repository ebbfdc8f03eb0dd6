package main

import (
	"encoding/json"
	"io"
)

type printer struct {
	w      io.Writer
	indent string
}

func newPrinter(w io.Writer, cfg Config) *printer {
	return &printer{w: w, indent: cfg.indent()}
}

// json marshals v as indented JSON.
func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", p.indent)
	return enc.Encode(v)
}

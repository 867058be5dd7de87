// Package ai defines the natural-language query capability. The engine treats
// the responder as an injected function so a real retrieval pipeline can be
// swapped in without touching the HTTP or storage layers.
package ai

import "context"

// Source is a reference document backing an answer.
type Source struct {
	Title   string `json:"title"`
	Date    string `json:"date,omitempty"`
	Section string `json:"section,omitempty"`
}

// Visualization is a chart suggestion accompanying an answer.
type Visualization struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

// QueryResponse is the structured answer to a natural-language query.
type QueryResponse struct {
	Answer         string          `json:"answer"`
	Sources        []Source        `json:"sources"`
	Visualizations []Visualization `json:"visualizations"`
}

// Responder answers natural-language queries about facility state.
type Responder interface {
	Answer(ctx context.Context, query string) (*QueryResponse, error)
}

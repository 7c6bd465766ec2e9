package external

import (
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	DefaultQuoteURL = "https://ron-swanson-quotes.herokuapp.com/v2/quotes"
	DefaultJokeURL  = "https://icanhazdadjoke.com/"
)

// The quote endpoint answers with a one-element array of strings.
var quoteSchema = jsonschema.MustCompileString("quote.json", `{
	"type": "array",
	"minItems": 1,
	"items": {"type": "string", "minLength": 1}
}`)

// The joke endpoint answers with an object holding the joke text.
var jokeSchema = jsonschema.MustCompileString("joke.json", `{
	"type": "object",
	"required": ["joke"],
	"properties": {"joke": {"type": "string", "minLength": 1}}
}`)

func NewQuoteClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultQuoteURL
	}
	return newClient("quote", url, timeout, quoteSchema, func(doc any) string {
		return doc.([]any)[0].(string)
	})
}

func NewJokeClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultJokeURL
	}
	return newClient("joke", url, timeout, jokeSchema, func(doc any) string {
		return doc.(map[string]any)["joke"].(string)
	})
}

// Package market provides a typed Go client for the Kashi marketplace REST API.
//
// # Overview
//
// The marketplace backend is a set of HTTP endpoints that store users, item
// listings and purchase offers (transactions). This package is the only place
// that knows the wire format: every other package in kashi works with the
// typed values defined here.
//
// # Envelopes
//
// Most endpoints answer with an envelope whose body field holds a JSON-encoded
// string:
//
//	{"statusCode": 200, "body": "[{\"itemID\": \"42\", ...}]"}
//
// Some endpoints answer with the payload directly. UnwrapEnvelope handles both
// and reports anything it cannot interpret as a *MalformedResponseError, so
// callers never parse a body twice themselves.
//
// # Loose values
//
// The API is not strict about scalar types. Booleans arrive as true, "true",
// "TRUE" or "False"; prices as numbers or strings; timestamps in several
// layouts. Flag, Price and Timestamp normalise these at the decoding boundary.
//
// # Usage Example
//
//	client, err := market.NewClient("https://api.example.com/prod/", http.DefaultClient)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	items, err := client.ListItems(ctx)
//	if market.IsMalformed(err) {
//		// the API answered with something we could not decode
//	}
//
// # Offer lifecycle
//
// A Transaction starts as StatusPending and moves once, to StatusAccepted or
// StatusRejected. Status.CanTransition encodes the allowed moves.
package market

package main

import (
	"encoding/json"
	"io"
)

// printJSON writes the payload as indented JSON, using the same field
// naming the daemon API emits so output can be piped back into scripts.
func printJSON(w io.Writer, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

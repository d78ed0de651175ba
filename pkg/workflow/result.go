package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// NodeOutput is the text produced by one node.
type NodeOutput struct {
	NodeID string
	Output string
}

// Result holds node outputs in execution order. It encodes as a JSON object keyed by node id
// whose keys keep that order.
type Result []NodeOutput

// Set records the output of nodeID. A node id seen before keeps its position.
func (r *Result) Set(nodeID, output string) {
	for i := range *r {
		if (*r)[i].NodeID == nodeID {
			(*r)[i].Output = output

			return
		}
	}

	*r = append(*r, NodeOutput{NodeID: nodeID, Output: output})
}

// Get returns the output recorded for nodeID.
func (r Result) Get(nodeID string) (string, bool) {
	for _, out := range r {
		if out.NodeID == nodeID {
			return out.Output, true
		}
	}

	return "", false
}

// Map returns the outputs keyed by node id.
func (r Result) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, out := range r {
		m[out.NodeID] = out.Output
	}

	return m
}

func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, out := range r {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(out.NodeID)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(out.Output)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (r *Result) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*r = nil

		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("result must be a JSON object")
	}

	var out Result

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected result key %v", tok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("result value for %q: %w", key, err)
		}

		out.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out

	return nil
}

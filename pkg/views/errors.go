package views

import "errors"

var (
	ErrFlowNotFound     = errors.New("flow not found")
	ErrNodeNotFound     = errors.New("node not found")
	ErrEditorNotReady   = errors.New("editor has no flow loaded")
	ErrNodeTypeRequired = errors.New("node type is required")
)

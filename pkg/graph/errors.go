package graph

import "errors"

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")
	ErrEmptyNodeID  = errors.New("empty node id")
)

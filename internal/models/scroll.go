package models

import "time"

// ScrollState is the per-pane bookkeeping of the synchronized scroll manager.
type ScrollState struct {
	ScrollTop       float64
	LastUpdate      time.Time
	IsDragging      bool
	IsWheelScroll   bool
	LastDragEndTime time.Time
}

// SyncBaseline records the offset between the panes that sync tries to keep.
type SyncBaseline struct {
	LeftPosition  float64
	RightPosition float64
	Offset        float64
	Timestamp     time.Time
}

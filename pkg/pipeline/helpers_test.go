package pipeline

import (
	"io"

	"github.com/charmbracelet/log"
)

func discard() *log.Logger { return log.New(io.Discard) }

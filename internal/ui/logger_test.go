package ui

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSetDebug(t *testing.T) {
	InitLogger()
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	SetDebug(true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	SetDebug(false)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

package dao

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListThreadTakesNewestRows(t *testing.T) {
	order := strings.Index(listThread, "ORDER BY c.created_at DESC, c.id DESC")
	limit := strings.Index(listThread, "LIMIT $4")

	assert.Positive(t, order)
	assert.Greater(t, limit, order)
}

package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect map[string]string
	}{
		{
			name:   "empty",
			raw:    "",
			expect: map[string]string{},
		},
		{
			name:   "whitespace only",
			raw:    "   \t ",
			expect: map[string]string{},
		},
		{
			name:   "free text only",
			raw:    "crash on startup",
			expect: map[string]string{"query": "crash on startup"},
		},
		{
			name:   "options only",
			raw:    "@state=open @author=alice",
			expect: map[string]string{"state": "open", "author": "alice"},
		},
		{
			name:   "mixed keeps word order",
			raw:    "crash @state=open on startup",
			expect: map[string]string{"state": "open", "query": "crash on startup"},
		},
		{
			name:   "last duplicate key wins",
			raw:    "@state=open @state=closed",
			expect: map[string]string{"state": "closed"},
		},
		{
			name:   "value may contain equals",
			raw:    "@filter=a=b",
			expect: map[string]string{"filter": "a=b"},
		},
		{
			name:   "empty value",
			raw:    "@labels=",
			expect: map[string]string{"labels": ""},
		},
		{
			name:   "at-token without equals is free text",
			raw:    "@alice ping",
			expect: map[string]string{"query": "@alice ping"},
		},
		{
			name:   "empty key is free text",
			raw:    "@=v",
			expect: map[string]string{"query": "@=v"},
		},
		{
			name:   "collapses repeated whitespace",
			raw:    "  a   b  ",
			expect: map[string]string{"query": "a b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ParseQuery(tt.raw))
		})
	}
}

func TestFormatOptions(t *testing.T) {
	assert.Equal(t, "", formatOptions(nil))
	assert.Equal(t, "Search: crash", formatOptions(map[string]string{"query": "crash"}))
	assert.Equal(t,
		"Search: crash @author=alice @state=open",
		formatOptions(map[string]string{"state": "open", "query": "crash", "author": "alice"}))
	assert.Equal(t, "Search: @state=open", formatOptions(map[string]string{"state": "open"}))
}

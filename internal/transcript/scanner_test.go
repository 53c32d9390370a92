// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exchange-engine/pkg/types"
)

func mainline(s string) *string { return &s }

func TestScan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.PromptBlock
	}{
		{
			name:  "prompt with mainline",
			input: "# You said:\nhello\n# ChatGPT said:\nhi there\n",
			want: []types.PromptBlock{
				{PromptText: "hello", Mainline: mainline("hi there")},
			},
		},
		{
			name: "two branches no mainline",
			input: "# You said:\nquestion\n" +
				"## Branch ChatGPT said:\nfirst take\n" +
				"## Branch ChatGPT said:\nsecond take\n",
			want: []types.PromptBlock{
				{
					PromptText: "question",
					Branches: []types.BranchResponse{
						{Index: 1, Content: "first take"},
						{Index: 2, Content: "second take"},
					},
				},
			},
		},
		{
			name:  "blank lines between markers yield empty prompt",
			input: "# You said:\n\n\n# ChatGPT said:\nreply\n",
			want: []types.PromptBlock{
				{PromptText: "", Mainline: mainline("reply")},
			},
		},
		{
			name:  "no markers at all",
			input: "just a plain document\nwith no chat markers\n",
			want:  nil,
		},
		{
			name:  "second prompt with no response",
			input: "# You said:\nfirst\n# ChatGPT said:\nreply\n# You said:\nsecond\n",
			want: []types.PromptBlock{
				{PromptText: "first", Mainline: mainline("reply")},
				{PromptText: "second"},
			},
		},
		{
			name:  "lines before first prompt are discarded",
			input: "exported 2026-01-01\nsome preamble\n# You said:\nhello\n",
			want: []types.PromptBlock{
				{PromptText: "hello"},
			},
		},
		{
			name: "windows line endings normalized",
			input: "# You said:\r\nhello\r\n" +
				"## Branch ChatGPT said:\r\nalt take\r\n" +
				"# ChatGPT said:\r\nhi there\r\n",
			want: []types.PromptBlock{
				{
					PromptText: "hello",
					Branches:   []types.BranchResponse{{Index: 1, Content: "alt take"}},
					Mainline:   mainline("hi there"),
				},
			},
		},
		{
			name:  "marker recognized after leading whitespace",
			input: "   # You said:\nindented marker\n\t# ChatGPT said:\ntabbed marker\n",
			want: []types.PromptBlock{
				{PromptText: "indented marker", Mainline: mainline("tabbed marker")},
			},
		},
		{
			name: "branch marker after mainline absorbed as content",
			input: "# You said:\nprompt\n# ChatGPT said:\nreply\n" +
				"## Branch ChatGPT said:\nlate branch\n",
			want: []types.PromptBlock{
				{
					PromptText: "prompt",
					Mainline:   mainline("reply\n## Branch ChatGPT said:\nlate branch"),
				},
			},
		},
		{
			name: "branch with empty body",
			input: "# You said:\nprompt\n" +
				"## Branch ChatGPT said:\n" +
				"## Branch ChatGPT said:\nsecond\n",
			want: []types.PromptBlock{
				{
					PromptText: "prompt",
					Branches: []types.BranchResponse{
						{Index: 1, Content: ""},
						{Index: 2, Content: "second"},
					},
				},
			},
		},
		{
			name:  "mainline marker with no body",
			input: "# You said:\nprompt\n# ChatGPT said:\n",
			want: []types.PromptBlock{
				{PromptText: "prompt", Mainline: mainline("")},
			},
		},
		{
			name:  "interior blank lines preserved",
			input: "# You said:\n\nfirst paragraph\n\nsecond paragraph\n\n# ChatGPT said:\nok\n",
			want: []types.PromptBlock{
				{
					PromptText: "first paragraph\n\nsecond paragraph",
					Mainline:   mainline("ok"),
				},
			},
		},
		{
			name: "branches followed by mainline",
			input: "# You said:\nprompt\n" +
				"## Branch ChatGPT said:\nalt\n" +
				"# ChatGPT said:\nmain answer\n",
			want: []types.PromptBlock{
				{
					PromptText: "prompt",
					Branches:   []types.BranchResponse{{Index: 1, Content: "alt"}},
					Mainline:   mainline("main answer"),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanBlockCountMatchesMarkerCount(t *testing.T) {
	var b strings.Builder
	const k = 7
	for i := 0; i < k; i++ {
		b.WriteString("# You said:\nprompt text\n# ChatGPT said:\nreply text\n")
	}

	blocks := Scan(b.String())
	require.Len(t, blocks, k)
	for _, block := range blocks {
		assert.Equal(t, "prompt text", block.PromptText)
	}
}

func TestScanBranchIndicesContiguous(t *testing.T) {
	input := "# You said:\nq\n" +
		"## Branch ChatGPT said:\na\n" +
		"## Branch ChatGPT said:\nb\n" +
		"## Branch ChatGPT said:\nc\n" +
		"# You said:\nq2\n" +
		"## Branch ChatGPT said:\nd\n"

	blocks := Scan(input)
	require.Len(t, blocks, 2)
	for _, block := range blocks {
		for i, br := range block.Branches {
			assert.Equal(t, i+1, br.Index)
		}
	}
	// The counter resets per block.
	assert.Equal(t, 1, blocks[1].Branches[0].Index)
}

func TestTrimSpan(t *testing.T) {
	tests := []struct {
		name string
		span []string
		want string
	}{
		{name: "nil span", span: nil, want: ""},
		{name: "all blank", span: []string{"", "  ", "\t"}, want: ""},
		{name: "leading and trailing blanks removed", span: []string{"", "a", "b", "", ""}, want: "a\nb"},
		{name: "interior blank kept", span: []string{"a", "", "b"}, want: "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimSpan(tt.span))
		})
	}
}

func TestTrimSpanIdempotent(t *testing.T) {
	trimmed := TrimSpan([]string{"", "first", "", "last", "  "})
	again := TrimSpan(strings.Split(trimmed, "\n"))
	assert.Equal(t, trimmed, again)
}

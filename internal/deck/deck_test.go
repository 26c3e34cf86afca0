package deck

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedEntries int
		expectedFront   string
		expectedBack    string
	}{
		{
			name:            "single entry",
			input:           "F: envisager\nB: to consider",
			expectedEntries: 1,
			expectedFront:   "envisager",
			expectedBack:    "to consider",
		},
		{
			name: "entries split by separator",
			input: `F: envisager
B: to consider
---
F: mettre en place
B: to set up
`,
			expectedEntries: 2,
		},
		{
			name: "new front starts a new entry without separator",
			input: `F: premier
B: first
F: deuxième
B: second
`,
			expectedEntries: 2,
		},
		{
			name: "multiline back",
			input: `F: piste cyclable
B: bike lane
(as painted on the road)
`,
			expectedEntries: 1,
			expectedFront:   "piste cyclable",
			expectedBack:    "bike lane\n(as painted on the road)",
		},
		{
			name:            "prefixes with no space",
			input:           "F:envisager\nB:to consider",
			expectedEntries: 1,
			expectedFront:   "envisager",
			expectedBack:    "to consider",
		},
		{
			name:            "no entries, just text",
			input:           "these lines are not\na deck at all",
			expectedEntries: 0,
		},
		{
			name:            "back without front is dropped",
			input:           "B: orphaned back",
			expectedEntries: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if len(entries) != tc.expectedEntries {
				t.Fatalf("Expected %d entries, got %d", tc.expectedEntries, len(entries))
			}
			if tc.expectedFront != "" && entries[0].Front != tc.expectedFront {
				t.Errorf("Expected front %q, got %q", tc.expectedFront, entries[0].Front)
			}
			if tc.expectedBack != "" && entries[0].Back != tc.expectedBack {
				t.Errorf("Expected back %q, got %q", tc.expectedBack, entries[0].Back)
			}
		})
	}
}

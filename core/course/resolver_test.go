package course

import "testing"

func TestResolveCode(t *testing.T) {
	tests := []struct {
		name    string
		codes   []string
		query   string
		want    string
		wantErr error
	}{
		{
			name:  "exact match wins immediately",
			codes: []string{"INT120CT", "ADV120CT"},
			query: "int120ct",
			want:  "INT120CT",
		},
		{
			name:  "unique suffix match",
			codes: []string{"INT120CT", "CS1101"},
			query: "120CT",
			want:  "INT120CT",
		},
		{
			name:  "unique prefix match",
			codes: []string{"MTH1114CMM", "CS1101"},
			query: "MTH1114",
			want:  "MTH1114CMM",
		},
		{
			name:    "two suffix candidates stay ambiguous",
			codes:   []string{"INT120CT", "ADV120CT"},
			query:   "120CT",
			wantErr: ErrUnresolvedCode,
		},
		{
			name:  "suffix preferred over prefix",
			codes: []string{"120CTX", "INT120CT"},
			query: "120CT",
			want:  "INT120CT",
		},
		{
			name:  "substring fallback",
			codes: []string{"AINT120CTX", "CS1101"},
			query: "120CT",
			want:  "AINT120CTX",
		},
		{
			name:    "ambiguous substring",
			codes:   []string{"AINT120CTX", "BINT120CTY"},
			query:   "120CT",
			wantErr: ErrUnresolvedCode,
		},
		{
			name:    "no candidates",
			codes:   []string{"CS1101"},
			query:   "ZZZ999",
			wantErr: ErrUnresolvedCode,
		},
		{
			name:    "empty query",
			codes:   []string{"CS1101"},
			query:   "  ",
			wantErr: ErrUnresolvedCode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCode(tt.codes, tt.query)
			if err != tt.wantErr {
				t.Fatalf("ResolveCode() error = %v; want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveCode() = %q; want %q", got, tt.want)
			}
		})
	}
}

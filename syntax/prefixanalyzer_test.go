package syntax

import (
	"slices"
	"strings"
	"testing"
)

func TestMinMaxLength(t *testing.T) {
	tests := []struct {
		pattern  string
		opt      RegexOptions
		min, max int
	}{
		{`a`, 0, 1, 1},
		{`[^a]`, 0, 1, 1},
		{`[abcdefg]`, 0, 1, 1},
		{`abcd`, 0, 4, 4},
		{`a*`, 0, 0, -1},
		{`a?`, 0, 0, 1},
		{`a+`, 0, 1, -1},
		{`(?>a*)a`, 0, 1, -1},
		{`(?>a*)a+`, 0, 1, -1},
		{`(?>a*)a*`, 0, 0, -1},
		{`a{2}`, 0, 2, 2},
		{`a{3,17}`, 0, 3, 17},
		{`[^a]{3,17}`, 0, 3, 17},
		{`(abcd){5}`, 0, 20, 20},
		{`(abcd|ef){2,6}`, 0, 4, 24},
		{`abcef|de`, 0, 2, 5},
		{`abc(def|ghij)k`, 0, 7, 8},
		{`abc(def|ghij|k||lmnopqrs|t)u`, 0, 4, 12},
		{`(ab)c(def|ghij|k|l|\1|m)n`, 0, 4, -1},
		{`abc|de*f|ghi`, 0, 2, -1},
		{`abc|de+f|ghi`, 0, 3, -1},
		{`abc|(def)+|ghi`, 0, 3, -1},
		{`(abc)+|def`, 0, 3, -1},
		{`\d{1,2}-\d{1,2}-\d{2,4}`, 0, 6, 10},
		{`1(?=9)\d`, 0, 2, 2},
		{`1(?!\d)\w`, 0, 2, 2},
		{`a*a*a*a*a*a*a*b*`, 0, 0, -1},
		{`((a{1,2}){4}){3,7}`, 0, 12, 56},
		{`\b\w{4}\b`, 0, 4, 4},
		{`\b\w{4}\b`, ECMAScript, 4, 4},
		{`abcd(?=efgh)efgh`, 0, 8, 8},
		{`abcd(?<=cd)efgh`, 0, 8, 8},
		{`abcd(?<!ef)efgh`, 0, 8, 8},
		{`(a{1073741824}){2}`, 0, 2147483646, -1}, // min length max is bound to int.MaxValue - 1 for convenience in other places where we need to be able to add 1 without risk of overflow
		{`a{1073741824}b{1073741824}`, 0, 2147483646, -1},
		{`(YZ+|(WX+|(UV+|(ST+|(QR+|(OP+|(MN+|(KL+|(IJ+|(GH+|(EF+|(CD+|(AB+|(89+|(67+|(45+|(23+|(01+|(yz+|(wx+|(uv+|(st+|(qr+|(op+|(mn+|(kl+|(ij+|(gh+|(ef+|(de+|(a|bc+)))))))))))))))))))))))))))))))`, 0, 1, -1},
		{`a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(a(ab|cd+)|ef+)|gh+)|ij+)|kl+)|mn+)|op+)|qr+)|st+)|uv+)|wx+)|yz+)|01+)|23+)|45+)|67+)|89+)|AB+)|CD+)|EF+)|GH+)|IJ+)|KL+)|MN+)|OP+)|QR+)|ST+)|UV+)|WX+)|YZ+)`, 0, 3, -1},
		{`(?(\d)\d{3}|\d)`, 0, 1, 3},
		{`(?(\d{7})\d{3}|\d{2})`, 0, 2, 3},
		{`(?(\d)\d{3}|\d{2})`, 0, 2, 3},
		{`(?(\d)|\d{2})`, 0, 0, 2},
		{`(?(\d)\d{3})`, 0, 0, 3},
		{`(abc)(?(1)\d{3}|\d{2})`, 0, 5, 6},
		{`(abc)(?(1)|\d{2})`, 0, 3, 5},
		{`(abc)(?(1)\d{3})`, 0, 3, 6},
		{`(abc|)`, 0, 0, 3},
		{`(?(x)abc|)`, 0, 0, 3},
		{`(?(x)|abc)^\A\G\z\Z$`, 0, 0, 3},
		{`(?(x)|abc)^\A\G\z$\Z`, Multiline, 0, 3},
		{`^\A\Gabc`, 0, 3, -1}, // leading anchor currently prevents ComputeMaxLength from being invoked, as it's not needed
		{`^\A\Gabc`, Multiline, 3, -1},
		{`abc            def`, IgnorePatternWhitespace, 6, 6},
		{`abcdef`, RightToLeft, 6, -1},
		{`x{2,3}y`, 0, 3, 4},
		{`(?:ab)?c`, 0, 1, 3},
		{`[a-z]+@`, 0, 2, -1},
		{`(?:x|yz){0,2}`, 0, 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			tree, err := Parse(tc.pattern, tc.opt)
			if err != nil {
				t.Fatalf("failed to parse %s: %v", tc.pattern, err)
			}
			if want, got := tc.min, tree.FindOptimizations.MinRequiredLength; want != got {
				t.Errorf("min length: want %v got %v", want, got)
			}

			// the max length is only kept when a trailing End or EndZ anchor needs it
			if !strings.HasSuffix(tc.pattern, "$") && !strings.HasSuffix(tc.pattern, `\Z`) {
				if tree, err = Parse("(?:"+tc.pattern+")$", tc.opt); err != nil {
					t.Fatal(err)
				}
			}
			if want, got := tc.max, tree.FindOptimizations.MaxPossibleLength; want != got {
				t.Errorf("max length: want %v got %v", want, got)
			}
		})
	}
}

func TestPrefixCharSets(t *testing.T) {
	tests := []struct {
		pattern string
		opt     RegexOptions
		set     string // "" when no set can be computed
	}{
		// Produce starting sets
		{`a`, 0, "[a]"},
		{`(a)`, 0, "[a]"},
		{`(a)+`, 0, "[a]"},
		{`abc`, 0, "[a]"},
		{`abc`, RightToLeft, "[c]"},
		{`abc|def`, RightToLeft, "[cf]"},
		{`a?b`, 0, "[ab]"},
		{`a?[bcd]`, 0, "[a-d]"},
		{`a?[bcd]*[xyz]`, 0, "[a-dx-z]"},
		{`[a-c]`, 0, "[a-c]"},
		{`a+b+c+`, 0, "[a]"},
		{`a*b+c+`, 0, "[ab]"},
		{`a*b*c+`, 0, "[a-c]"},
		{`.`, 0, "[^\\n]"},
		{`.|\n`, 0, ""},
		{`[^\n]?[\n]`, 0, ""},
		{`[^a]?[a]`, 0, ""},
		{`(abc)?(?(\1)yes|no)`, 0, "[any]"},
		{`(abc)?(?(xyz)yes|no)`, 0, "[any]"},
		{`[^a-zA-Z0-9_.]`, 0, "[^\\.0-9A-Z_a-z]"},
		{`[xy]z`, 0, "[xy]"},
		{`q?r`, 0, "[qr]"},
		{`(?:pq|r)s`, RightToLeft, "[s]"},
		// Can't produce starting sets
		{"", 0, ""},
		{`a*`, 0, ""},
		{`a*b*`, 0, ""},
		{`a*|b*`, 0, ""},
		{`(a)*`, 0, ""},
		{`(?:a)*`, 0, ""},
		{`(a*)+`, 0, ""},
		{`[^ab]|a`, 0, ""},
		{`[^ab]|ab`, 0, ""},
		{`[^ab]?[a]`, 0, ""},
		{`(abc)?\1`, 0, ""},
		{`[abc-[bc]]|[def]`, 0, ""},
		{`(abc)?(?(\1)d*|f)`, 0, ""},
		{`(abc)?(?(xyz)d*|f)`, 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			tree, err := Parse(tc.pattern, tc.opt)
			if err != nil {
				t.Fatalf("failed to parse %s: %v", tc.pattern, err)
			}

			got := ""
			if cs := findFirstCharClass(tree.Root); cs != nil {
				got = cs.String()
			}
			if got != tc.set {
				t.Fatalf("wanted %q got %q", tc.set, got)
			}
		})
	}
}

func TestFindPrefixes(t *testing.T) {
	tests := []struct {
		pattern    string
		want       []string
		ignoreCase bool
	}{
		// case-sensitive
		{"abc", []string{"abc"}, false},
		{"(abc+|bcd+)", []string{"abc", "bcd"}, false},
		{"(ab+c|bcd+)", []string{"ab", "bcd"}, false},
		{"(ab+c|bcd+)*", nil, false},
		{"(ab+c|bcd+)+", []string{"ab", "bcd"}, false},
		{"abc|def", []string{"abc", "def"}, false},
		{"ab{4}c|def{5}|g{2,4}h", []string{"abbbbc", "defffff", "gg"}, false},
		{"abc|def|(ghi|jklm)", []string{"abc", "def", "ghi", "jklm"}, false},
		{"abc[def]ghi", []string{"abcdghi", "abceghi", "abcfghi"}, false},
		{"abc[def]ghi|[jkl]m", []string{"abcdghi", "abceghi", "abcfghi", "jm", "km", "lm"}, false},
		{"agggtaaa|tttaccct", []string{"agggtaaa", "tttaccct"}, false},
		{"[cgt]gggtaaa|tttaccc[acg]", []string{"cgggtaaa", "ggggtaaa", "tgggtaaa", "tttaccca", "tttacccc", "tttacccg"}, false},
		{"a[act]ggtaaa|tttacc[agt]t", []string{"aaggtaaa", "acggtaaa", "atggtaaa", "tttaccat", "tttaccgt", "tttacctt"}, false},
		{`\b(abc|def)\b`, []string{"abc", "def"}, false},
		{"^(abc|def)$", []string{"abc", "def"}, false},
		{"abcdefg|h", nil, false},
		{"abc[def]ghi|[jkl]", nil, false},
		{"[12][45][789]", []string{"147", "148", "149", "157", "158", "159", "247", "248", "249", "257", "258", "259"}, false},
		{"(abc){3}|(def){3}", []string{"abcabcabc", "defdefdef"}, false},
		{"(abc){4,8}|(def){2,3}", []string{"abcabcabc", "defdef"}, false},
		{"(abc){4,8}|(de+f){2,3}", []string{"abcabcabc", "de"}, false},
		{"(ab{2}c){4,8}|(de+f){2,3}", []string{"abbcabbc", "de"}, false},
		{"foo|bar", []string{"bar", "foo"}, false},
		{"x[yz]w", []string{"xyw", "xzw"}, false},
		// case-insensitive
		{"[Aa][Bb][Cc]", []string{"abc"}, true},
		{"[Aa][Bbc][Cc]", nil, true},
		{":[Aa]![Bb]@", []string{":a!b@"}, true},
		{"(?i)abc", []string{"abc"}, true},
		{"(?i)(abc+|bcd+)", []string{"abc", "bcd"}, true},
		{"(?i)(ab+c|bcd+)", []string{"ab", "bcd"}, true},
		{"(?i)(ab+c|bcd+)+", []string{"ab", "bcd"}, true},
		{"(?i)abc|def", []string{"abc", "def"}, true},
		{"(?i)ab{4}c|def{5}|g{2,4}h", []string{"abbbbc", "defffff", "gg"}, true},
		{"(?i)(((?>abc)|(?>def)))", []string{"abc", "def"}, true},
		{"(?i)(abc|def|(ghi|jklm))", nil, true},
		{"(?i)(abc|def|(ghi|jlmn))", []string{"abc", "def", "ghi", "jlmn"}, true},
		{"abc", nil, true},
		{"abc|def", nil, true},
		{"://[Aa][Bb]|[Cc]@!", []string{"://ab", "c@!"}, true},
		{"(?i)((abc){4,8}|(def){2,3})", []string{"abcabcab", "defdef"}, true},
		{"(?i)((ab{2}c){4,8}|(de+f){2,3})", []string{"abbcabbc", "de"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			tree, err := Parse(tc.pattern, 0)
			if err != nil {
				t.Fatalf("failed to parse %s: %v", tc.pattern, err)
			}
			got := findPrefixes(tree.Root, tc.ignoreCase)

			slices.Sort(got)
			want := slices.Clone(tc.want)
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Fatalf("wanted %v got %v (ignoreCase=%v)", want, got, tc.ignoreCase)
			}
		})
	}
}

func TestFixedDistanceSetLookupTable(t *testing.T) {
	tests := []struct {
		pattern   string
		wantTable bool
		text      string
		want      int
	}{
		{`[aeiou]`, true, "bcdox", 3},
		{`[aeiou]`, true, "bcdfg", -1},
		{`[ab]`, false, "zzbx", 2},
		{`[^aeiou]`, true, "aeibx", 3},
		{`[^aeiou]`, true, "aeiou", -1},
		{`[a-z]`, false, "12qx", 2},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			tree, err := Parse(tc.pattern, 0)
			if err != nil {
				t.Fatal(err)
			}
			f := tree.FindOptimizations
			if len(f.FixedDistanceSets) == 0 {
				t.Fatalf("no fixed distance sets, mode %v", f.FindMode)
			}
			s := &f.FixedDistanceSets[0]
			if want, got := tc.wantTable, s.values != nil; want != got {
				t.Fatalf("lookup table: want %v got %v", want, got)
			}
			if want, got := tc.want, indexOfSet([]rune(tc.text), s); want != got {
				t.Fatalf("indexOfSet(%q): want %v got %v", tc.text, want, got)
			}
		})
	}
}

func TestLeadingSetRightToLeftLookupTable(t *testing.T) {
	tree, err := Parse(`[aeiou]`, RightToLeft)
	if err != nil {
		t.Fatal(err)
	}
	f := tree.FindOptimizations
	if want, got := LeadingSet_RightToLeft, f.FindMode; want != got {
		t.Fatalf("want %v got %v", want, got)
	}
	if f.FixedDistanceSets[0].values == nil {
		t.Fatal("expected a lookup table")
	}

	text := []rune("xaxxex")
	pos := len(text)
	if !f.TryFindNextStartingPosition(text, &pos, 0, 0, len(text)) {
		t.Fatal("expected a candidate")
	}
	if want, got := 5, pos; want != got {
		t.Fatalf("want %v got %v", want, got)
	}
}

package syntax

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ModxVoldHunter/CSharp-SDK-sub006/helpers"
)

// CharSet combines start-end rune ranges and unicode categories representing a set of characters
type CharSet struct {
	ranges     []SingleRange
	categories []category
	sub        *CharSet //optional subtractor
	negate     bool
	anything   bool
}

type category struct {
	negate bool
	cat    string
}

// SingleRange is an inclusive range of runes
type SingleRange struct {
	First rune
	Last  rune
}

const (
	spaceCategoryText = " "
	wordCategoryText  = "W"
)

var (
	ecmaSpace = []rune{0x0009, 0x000e, 0x0020, 0x0021, 0x00a0, 0x00a1, 0x1680, 0x1681, 0x2000, 0x200b, 0x2028, 0x202a, 0x202f, 0x2030, 0x205f, 0x2060, 0x3000, 0x3001, 0xfeff, 0xff00}
	ecmaWord  = []rune{0x0030, 0x003a, 0x0041, 0x005b, 0x005f, 0x0060, 0x0061, 0x007b}
	ecmaDigit = []rune{0x0030, 0x003a}

	re2Space = []rune{0x0009, 0x000b, 0x000c, 0x000e, 0x0020, 0x0021}
)

// AnyClass matches every character
func AnyClass() *CharSet { return getCharSetFromOldString([]rune{0}, false) }

// ECMAAnyClass matches everything but the ECMAScript line terminators
func ECMAAnyClass() *CharSet {
	return getCharSetFromOldString([]rune{0, 0x000a, 0x000b, 0x000d, 0x000e}, false)
}

// NotNewLineClass is the default "." set
func NotNewLineClass() *CharSet {
	return &CharSet{ranges: []SingleRange{{'\n', '\n'}}, negate: true}
}

func WordClass() *CharSet    { return getCharSetFromCategoryString(false, false, wordCategoryText) }
func NotWordClass() *CharSet { return getCharSetFromCategoryString(true, false, wordCategoryText) }
func SpaceClass() *CharSet   { return getCharSetFromCategoryString(false, false, spaceCategoryText) }
func NotSpaceClass() *CharSet {
	return getCharSetFromCategoryString(true, false, spaceCategoryText)
}
func DigitClass() *CharSet    { return getCharSetFromCategoryString(false, false, "Nd") }
func NotDigitClass() *CharSet { return getCharSetFromCategoryString(false, true, "Nd") }

func ECMAWordClass() *CharSet     { return getCharSetFromOldString(ecmaWord, false) }
func NotECMAWordClass() *CharSet  { return getCharSetFromOldString(ecmaWord, true) }
func ECMASpaceClass() *CharSet    { return getCharSetFromOldString(ecmaSpace, false) }
func NotECMASpaceClass() *CharSet { return getCharSetFromOldString(ecmaSpace, true) }
func ECMADigitClass() *CharSet    { return getCharSetFromOldString(ecmaDigit, false) }
func NotECMADigitClass() *CharSet { return getCharSetFromOldString(ecmaDigit, true) }

var unicodeCategories = func() map[string]*unicode.RangeTable {
	retVal := make(map[string]*unicode.RangeTable)
	for k, v := range unicode.Scripts {
		retVal[k] = v
	}
	for k, v := range unicode.Categories {
		retVal[k] = v
	}
	for k, v := range unicode.Properties {
		retVal[k] = v
	}
	return retVal
}()

// unicodeBlocks holds the named blocks usable as \p{IsX}. A block is a plain
// range of code points, so it is added to a set as ranges, not as a category.
var unicodeBlocks = map[string]SingleRange{
	"IsAlphabeticPresentationForms":         {0xFB00, 0xFB4F},
	"IsArabic":                              {0x0600, 0x06FF},
	"IsArabicPresentationForms-A":           {0xFB50, 0xFDFF},
	"IsArabicPresentationForms-B":           {0xFE70, 0xFEFF},
	"IsArmenian":                            {0x0530, 0x058F},
	"IsArrows":                              {0x2190, 0x21FF},
	"IsBasicLatin":                          {0x0000, 0x007F},
	"IsBengali":                             {0x0980, 0x09FF},
	"IsBlockElements":                       {0x2580, 0x259F},
	"IsBopomofo":                            {0x3100, 0x312F},
	"IsBopomofoExtended":                    {0x31A0, 0x31BF},
	"IsBoxDrawing":                          {0x2500, 0x257F},
	"IsBraillePatterns":                     {0x2800, 0x28FF},
	"IsBuhid":                               {0x1740, 0x175F},
	"IsCJKCompatibility":                    {0x3300, 0x33FF},
	"IsCJKCompatibilityForms":               {0xFE30, 0xFE4F},
	"IsCJKCompatibilityIdeographs":          {0xF900, 0xFAFF},
	"IsCJKRadicalsSupplement":               {0x2E80, 0x2EFF},
	"IsCJKSymbolsandPunctuation":            {0x3000, 0x303F},
	"IsCJKUnifiedIdeographs":                {0x4E00, 0x9FFF},
	"IsCJKUnifiedIdeographsExtensionA":      {0x3400, 0x4DBF},
	"IsCherokee":                            {0x13A0, 0x13FF},
	"IsCombiningDiacriticalMarks":           {0x0300, 0x036F},
	"IsCombiningDiacriticalMarksforSymbols": {0x20D0, 0x20FF},
	"IsCombiningHalfMarks":                  {0xFE20, 0xFE2F},
	"IsCombiningMarksforSymbols":            {0x20D0, 0x20FF},
	"IsControlPictures":                     {0x2400, 0x243F},
	"IsCurrencySymbols":                     {0x20A0, 0x20CF},
	"IsCyrillic":                            {0x0400, 0x04FF},
	"IsCyrillicSupplement":                  {0x0500, 0x052F},
	"IsDevanagari":                          {0x0900, 0x097F},
	"IsDingbats":                            {0x2700, 0x27BF},
	"IsEnclosedAlphanumerics":               {0x2460, 0x24FF},
	"IsEnclosedCJKLettersandMonths":         {0x3200, 0x32FF},
	"IsEthiopic":                            {0x1200, 0x137F},
	"IsGeneralPunctuation":                  {0x2000, 0x206F},
	"IsGeometricShapes":                     {0x25A0, 0x25FF},
	"IsGeorgian":                            {0x10A0, 0x10FF},
	"IsGreek":                               {0x0370, 0x03FF},
	"IsGreekandCoptic":                      {0x0370, 0x03FF},
	"IsGreekExtended":                       {0x1F00, 0x1FFF},
	"IsGujarati":                            {0x0A80, 0x0AFF},
	"IsGurmukhi":                            {0x0A00, 0x0A7F},
	"IsHalfwidthandFullwidthForms":          {0xFF00, 0xFFEF},
	"IsHangulCompatibilityJamo":             {0x3130, 0x318F},
	"IsHangulJamo":                          {0x1100, 0x11FF},
	"IsHangulSyllables":                     {0xAC00, 0xD7AF},
	"IsHanunoo":                             {0x1720, 0x173F},
	"IsHebrew":                              {0x0590, 0x05FF},
	"IsHighPrivateUseSurrogates":            {0xDB80, 0xDBFF},
	"IsHighSurrogates":                      {0xD800, 0xDB7F},
	"IsHiragana":                            {0x3040, 0x309F},
	"IsIPAExtensions":                       {0x0250, 0x02AF},
	"IsIdeographicDescriptionCharacters":    {0x2FF0, 0x2FFF},
	"IsKanbun":                              {0x3190, 0x319F},
	"IsKangxiRadicals":                      {0x2F00, 0x2FDF},
	"IsKannada":                             {0x0C80, 0x0CFF},
	"IsKatakana":                            {0x30A0, 0x30FF},
	"IsKatakanaPhoneticExtensions":          {0x31F0, 0x31FF},
	"IsKhmer":                               {0x1780, 0x17FF},
	"IsKhmerSymbols":                        {0x19E0, 0x19FF},
	"IsLao":                                 {0x0E80, 0x0EFF},
	"IsLatin-1Supplement":                   {0x0080, 0x00FF},
	"IsLatinExtended-A":                     {0x0100, 0x017F},
	"IsLatinExtended-B":                     {0x0180, 0x024F},
	"IsLatinExtendedAdditional":             {0x1E00, 0x1EFF},
	"IsLetterlikeSymbols":                   {0x2100, 0x214F},
	"IsLimbu":                               {0x1900, 0x194F},
	"IsLowSurrogates":                       {0xDC00, 0xDFFF},
	"IsMalayalam":                           {0x0D00, 0x0D7F},
	"IsMathematicalOperators":               {0x2200, 0x22FF},
	"IsMiscellaneousMathematicalSymbols-A":  {0x27C0, 0x27EF},
	"IsMiscellaneousMathematicalSymbols-B":  {0x2980, 0x29FF},
	"IsMiscellaneousSymbols":                {0x2600, 0x26FF},
	"IsMiscellaneousSymbolsandArrows":       {0x2B00, 0x2BFF},
	"IsMiscellaneousTechnical":              {0x2300, 0x23FF},
	"IsMongolian":                           {0x1800, 0x18AF},
	"IsMyanmar":                             {0x1000, 0x109F},
	"IsNumberForms":                         {0x2150, 0x218F},
	"IsOgham":                               {0x1680, 0x169F},
	"IsOpticalCharacterRecognition":         {0x2440, 0x245F},
	"IsOriya":                               {0x0B00, 0x0B7F},
	"IsPhoneticExtensions":                  {0x1D00, 0x1D7F},
	"IsPrivateUse":                          {0xE000, 0xF8FF},
	"IsPrivateUseArea":                      {0xE000, 0xF8FF},
	"IsRunic":                               {0x16A0, 0x16FF},
	"IsSinhala":                             {0x0D80, 0x0DFF},
	"IsSmallFormVariants":                   {0xFE50, 0xFE6F},
	"IsSpacingModifierLetters":              {0x02B0, 0x02FF},
	"IsSpecials":                            {0xFFF0, 0xFFFF},
	"IsSuperscriptsandSubscripts":           {0x2070, 0x209F},
	"IsSupplementalArrows-A":                {0x27F0, 0x27FF},
	"IsSupplementalArrows-B":                {0x2900, 0x297F},
	"IsSupplementalMathematicalOperators":   {0x2A00, 0x2AFF},
	"IsSyriac":                              {0x0700, 0x074F},
	"IsTagalog":                             {0x1700, 0x171F},
	"IsTagbanwa":                            {0x1760, 0x177F},
	"IsTaiLe":                               {0x1950, 0x197F},
	"IsTamil":                               {0x0B80, 0x0BFF},
	"IsTelugu":                              {0x0C00, 0x0C7F},
	"IsThaana":                              {0x0780, 0x07BF},
	"IsThai":                                {0x0E00, 0x0E7F},
	"IsTibetan":                             {0x0F00, 0x0FFF},
	"IsUnifiedCanadianAboriginalSyllabics":  {0x1400, 0x167F},
	"IsVariationSelectors":                  {0xFE00, 0xFE0F},
	"IsYiRadicals":                          {0xA490, 0xA4CF},
	"IsYiSyllables":                         {0xA000, 0xA48F},
	"IsYijingHexagramSymbols":               {0x4DC0, 0x4DFF},
}

// categoryCodes gives every known category a stable small integer for Hash
var categoryCodes, categoryNames = func() (map[string]int, []string) {
	names := []string{spaceCategoryText, wordCategoryText}
	var rest []string
	for k := range unicodeCategories {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	names = append(names, rest...)
	codes := make(map[string]int, len(names))
	for i, n := range names {
		codes[n] = i
	}
	return codes, names
}()

func getCharSetFromCategoryString(negateSet bool, negateCat bool, cats ...string) *CharSet {
	c := &CharSet{negate: negateSet}
	c.categories = make([]category, len(cats))
	for i, cat := range cats {
		c.categories[i] = category{cat: cat, negate: negateCat}
	}
	return c
}

// getCharSetFromOldString builds a set from the .NET style range list: pairs of
// [first, next-not-included) with an optional open-ended trailing start.
func getCharSetFromOldString(setText []rune, negate bool) *CharSet {
	c := &CharSet{}
	if len(setText) > 0 {
		fillFirst := false
		l := len(setText)
		if negate {
			if setText[0] == 0 {
				setText = setText[1:]
			} else {
				l++
				fillFirst = true
			}
		}

		if l%2 == 0 {
			c.ranges = make([]SingleRange, l/2)
		} else {
			c.ranges = make([]SingleRange, l/2+1)
		}

		first := true
		if fillFirst {
			c.ranges[0] = SingleRange{First: 0}
			first = false
		}

		i := 0
		for _, r := range setText {
			if first {
				c.ranges[i] = SingleRange{First: r}
				first = false
			} else {
				c.ranges[i].Last = r - 1
				i++
				first = true
			}
		}
		if !first {
			c.ranges[i].Last = utf8.MaxRune
		}
	}

	c.canonicalize()
	return c
}

// Copy makes a deep copy to prevent accidental mutation of a set
func (c CharSet) Copy() CharSet {
	ret := CharSet{
		anything: c.anything,
		negate:   c.negate,
	}

	ret.ranges = append(ret.ranges, c.ranges...)
	ret.categories = append(ret.categories, c.categories...)

	if c.sub != nil {
		sub := c.sub.Copy()
		ret.sub = &sub
	}

	return ret
}

// gets a human-readable description for a set string
func (c CharSet) String() string {
	if c.anything {
		return "[any]"
	}
	ranges, negate := c.ranges, c.negate
	// a positive set that reaches the top of the rune space reads better as its complement
	if !negate && len(c.categories) == 0 && c.sub == nil && len(ranges) > 0 &&
		ranges[len(ranges)-1].Last == utf8.MaxRune {
		comp := complementRanges(ranges)
		if len(comp) == 0 {
			return "[any]"
		}
		if len(comp) <= len(ranges) {
			ranges, negate = comp, true
		}
	}

	buf := &bytes.Buffer{}
	buf.WriteRune('[')

	if negate {
		buf.WriteRune('^')
	}

	for _, r := range ranges {
		buf.WriteString(CharDescription(r.First))
		if r.First != r.Last {
			if r.Last-r.First != 1 {
				//groups that are 1 char apart skip the dash
				buf.WriteRune('-')
			}
			buf.WriteString(CharDescription(r.Last))
		}
	}

	for _, c := range c.categories {
		buf.WriteString(c.String())
	}

	if c.sub != nil {
		buf.WriteRune('-')
		buf.WriteString(c.sub.String())
	}

	buf.WriteRune(']')

	return buf.String()
}

// mapHashFill converts a charset into a buffer for use in maps
func (c CharSet) mapHashFill(buf *bytes.Buffer) {
	var flags byte
	if c.negate {
		flags |= 1
	}
	if c.anything {
		flags |= 2
	}
	if c.sub != nil {
		flags |= 4
	}
	buf.WriteByte(flags)

	var tmp [binary.MaxVarintLen64]byte
	putUvarint := func(v uint64) {
		n := binary.PutUvarint(tmp[:], v)
		buf.Write(tmp[:n])
	}

	putUvarint(uint64(len(c.ranges)))
	for _, r := range c.ranges {
		putUvarint(uint64(r.First))
		putUvarint(uint64(r.Last))
	}

	putUvarint(uint64(len(c.categories)))
	for _, ct := range c.categories {
		code := int64(categoryCodes[ct.cat] + 1)
		if ct.negate {
			code = -code
		}
		n := binary.PutVarint(tmp[:], code)
		buf.Write(tmp[:n])
	}

	if c.sub != nil {
		c.sub.mapHashFill(buf)
	}
}

// Hash returns a compact binary form of the set, readable by NewCharSetRuntime
func (c CharSet) Hash() []byte {
	buf := &bytes.Buffer{}
	c.mapHashFill(buf)
	return buf.Bytes()
}

// NewCharSetRuntime rebuilds a set from the output of Hash
func NewCharSetRuntime(buf string) (CharSet, error) {
	return readCharSet(strings.NewReader(buf))
}

func readCharSet(r *strings.Reader) (CharSet, error) {
	c := CharSet{}
	flags, err := r.ReadByte()
	if err != nil {
		return c, err
	}
	c.negate = flags&1 != 0
	c.anything = flags&2 != 0

	count, err := binary.ReadUvarint(r)
	if err != nil {
		return c, err
	}
	for i := uint64(0); i < count; i++ {
		first, err := binary.ReadUvarint(r)
		if err != nil {
			return c, err
		}
		last, err := binary.ReadUvarint(r)
		if err != nil {
			return c, err
		}
		c.ranges = append(c.ranges, SingleRange{First: rune(first), Last: rune(last)})
	}

	count, err = binary.ReadUvarint(r)
	if err != nil {
		return c, err
	}
	for i := uint64(0); i < count; i++ {
		code, err := binary.ReadVarint(r)
		if err != nil {
			return c, err
		}
		neg := code < 0
		if neg {
			code = -code
		}
		if code < 1 || code > int64(len(categoryNames)) {
			return c, fmt.Errorf("bad category code %v in charset hash", code)
		}
		c.categories = append(c.categories, category{negate: neg, cat: categoryNames[code-1]})
	}

	if flags&4 != 0 {
		sub, err := readCharSet(r)
		if err != nil {
			return c, err
		}
		c.sub = &sub
	}
	return c, nil
}

// Equals reports whether the two sets have the same structure
func (c CharSet) Equals(o *CharSet) bool {
	if o == nil {
		return false
	}
	return bytes.Equal(c.Hash(), o.Hash())
}

func (c category) String() string {
	switch c.cat {
	case spaceCategoryText:
		if c.negate {
			return "\\S"
		}
		return "\\s"
	case wordCategoryText:
		if c.negate {
			return "\\W"
		}
		return "\\w"
	}
	if _, ok := unicodeCategories[c.cat]; ok {
		if c.negate {
			return "\\P{" + c.cat + "}"
		}
		return "\\p{" + c.cat + "}"
	}
	return "Unknown category: " + c.cat
}

// CharIn returns true if the rune is in our character set (either ranges or categories).
// It handles negations and subtracted sub-charsets.
func (c CharSet) CharIn(ch rune) bool {
	val := false
	// in s && !s.subtracted

	//check ranges
	if c.anything {
		val = true
	} else {
		val = c.inRanges(ch)
		//check categories if we haven't already found a range
		if !val && len(c.categories) > 0 {
			for _, ct := range c.categories {
				// special categories...then unicode
				if ct.cat == spaceCategoryText {
					if unicode.IsSpace(ch) {
						// we found a space so we're done
						// negate means this is a "bad" thing
						val = !ct.negate
						break
					} else if ct.negate {
						val = true
						break
					}
				} else if ct.cat == wordCategoryText {
					if helpers.IsWordChar(ch) {
						val = !ct.negate
						break
					} else if ct.negate {
						val = true
						break
					}
				} else if unicode.Is(unicodeCategories[ct.cat], ch) {
					// if we're in this unicode category then we're done
					// if negate=true on this category then we "failed" our test
					// otherwise we're good that we found it
					val = !ct.negate
					break
				} else if ct.negate {
					val = true
					break
				}
			}
		}
	}

	if c.negate {
		val = !val
	}

	// get subtraction charset
	if val && c.sub != nil {
		val = !c.sub.CharIn(ch)
	}

	return val
}

func (c CharSet) inRanges(ch rune) bool {
	// ranges are canonicalized and sorted so we can binary search
	i := sort.Search(len(c.ranges), func(i int) bool { return c.ranges[i].Last >= ch })
	return i < len(c.ranges) && c.ranges[i].First <= ch
}

func (c *CharSet) addDigit(ecma, negate bool) {
	if ecma {
		if negate {
			c.addNegativeRanges(ECMADigitClass().ranges)
		} else {
			c.addRanges(ECMADigitClass().ranges)
		}
	} else {
		c.addCategories(category{cat: "Nd", negate: negate})
	}
}

func (c *CharSet) addChar(ch rune) {
	c.addRange(ch, ch)
}

func (c *CharSet) addSpace(ecma, re2, negate bool) {
	if ecma {
		if negate {
			c.addNegativeRanges(ECMASpaceClass().ranges)
		} else {
			c.addRanges(ECMASpaceClass().ranges)
		}
	} else if re2 {
		if negate {
			c.addNegativeRanges(getCharSetFromOldString(re2Space, false).ranges)
		} else {
			c.addRanges(getCharSetFromOldString(re2Space, false).ranges)
		}
	} else {
		c.addCategories(category{cat: spaceCategoryText, negate: negate})
	}
}

func (c *CharSet) addWord(ecma, negate bool) {
	if ecma {
		if negate {
			c.addNegativeRanges(ECMAWordClass().ranges)
		} else {
			c.addRanges(ECMAWordClass().ranges)
		}
	} else {
		c.addCategories(category{cat: wordCategoryText, negate: negate})
	}
}

// Add set ranges and categories into ours -- no deduping or anything
func (c *CharSet) addSet(set CharSet) {
	if c.anything {
		return
	}
	if set.anything {
		c.makeAnything()
		return
	}
	// just append here to prevent double-canon
	c.ranges = append(c.ranges, set.ranges...)
	c.addCategories(set.categories...)
	c.canonicalize()
}

func (c *CharSet) makeAnything() {
	c.anything = true
	c.categories = []category{}
	c.ranges = AnyClass().ranges
}

func (c *CharSet) addCategories(cats ...category) {
	// don't add dupes and remove positive+negative
	if c.anything {
		// if we've had a previous positive+negative group then
		// just return, we're as broad as we can get
		return
	}

	for _, ct := range cats {
		found := false
		for _, ct2 := range c.categories {
			if ct.cat == ct2.cat {
				if ct.negate != ct2.negate {
					// oposite negations...this mean we just
					// take us as anything and move on
					c.makeAnything()
					return
				}
				found = true
				break
			}
		}

		if !found {
			c.categories = append(c.categories, ct)
		}
	}
}

// Merges new ranges to our own
func (c *CharSet) addRanges(ranges []SingleRange) {
	if c.anything {
		return
	}
	c.ranges = append(c.ranges, ranges...)
	c.canonicalize()
}

// Merges everything but the new ranges into our own
func (c *CharSet) addNegativeRanges(ranges []SingleRange) {
	if c.anything {
		return
	}

	var hi rune

	// convert incoming ranges into opposites, assume they are in order
	for _, r := range ranges {
		if hi < r.First {
			c.ranges = append(c.ranges, SingleRange{hi, r.First - 1})
		}
		hi = r.Last + 1
	}

	if hi < utf8.MaxRune {
		c.ranges = append(c.ranges, SingleRange{hi, utf8.MaxRune})
	}

	c.canonicalize()
}

func isValidUnicodeCat(catName string) bool {
	if _, ok := unicodeBlocks[catName]; ok {
		return true
	}
	_, ok := unicodeCategories[catName]
	return ok
}

// addCategory assumes the name was checked with isValidUnicodeCat
func (c *CharSet) addCategory(categoryName string, negate, caseInsensitive bool) {
	if block, ok := unicodeBlocks[categoryName]; ok {
		if !negate {
			c.addRange(block.First, block.Last)
			return
		}
		if block.First > 0 {
			c.addRange(0, block.First-1)
		}
		if block.Last < utf8.MaxRune {
			c.addRange(block.Last+1, utf8.MaxRune)
		}
		return
	}

	if caseInsensitive && (categoryName == "Ll" || categoryName == "Lu" || categoryName == "Lt") {
		// when RegexOptions.IgnoreCase is specified then {Ll} {Lu} and {Lt} cases should all match
		c.addCategories(
			category{cat: "Ll", negate: negate},
			category{cat: "Lu", negate: negate},
			category{cat: "Lt", negate: negate})
		return
	}
	c.addCategories(category{cat: categoryName, negate: negate})
}

func (c *CharSet) addSubtraction(sub *CharSet) {
	c.sub = sub
}

func (c *CharSet) addRange(chMin, chMax rune) {
	c.ranges = append(c.ranges, SingleRange{First: chMin, Last: chMax})
	c.canonicalize()
}

// maxFoldingRune is the highest rune that has a case mapping in the unicode tables
const maxFoldingRune = 0x1E943

// addCaseEquivalences adds every case variant of the characters in our ranges
// according to the folder's culture
func (c *CharSet) addCaseEquivalences(folder CaseFolder) {
	if c.anything {
		return
	}
	if folder == nil {
		folder = invariantFolder{}
	}
	var extra []SingleRange
	for _, r := range c.ranges {
		last := r.Last
		if last > maxFoldingRune {
			last = maxFoldingRune
		}
		for ch := r.First; ch <= last; ch++ {
			for _, eq := range folder.Equivalences(ch) {
				if eq < r.First || eq > r.Last {
					extra = append(extra, SingleRange{eq, eq})
				}
			}
		}
	}
	if len(extra) > 0 {
		c.ranges = append(c.ranges, extra...)
		c.canonicalize()
	}
	if c.sub != nil {
		c.sub.addCaseEquivalences(folder)
	}
}

// posixClasses are the ASCII-only named classes usable as [[:name:]] in RE2 mode
var posixClasses = map[string][]SingleRange{
	"alnum":  {{'0', '9'}, {'A', 'Z'}, {'a', 'z'}},
	"alpha":  {{'A', 'Z'}, {'a', 'z'}},
	"ascii":  {{0, 0x7f}},
	"blank":  {{'\t', '\t'}, {' ', ' '}},
	"cntrl":  {{0, 0x1f}, {0x7f, 0x7f}},
	"digit":  {{'0', '9'}},
	"graph":  {{'!', '~'}},
	"lower":  {{'a', 'z'}},
	"print":  {{' ', '~'}},
	"punct":  {{'!', '/'}, {':', '@'}, {'[', '`'}, {'{', '~'}},
	"space":  {{'\t', '\r'}, {' ', ' '}},
	"upper":  {{'A', 'Z'}},
	"word":   {{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}},
	"xdigit": {{'0', '9'}, {'A', 'F'}, {'a', 'f'}},
}

// addNamedASCII adds the posix class with the given name, returning false if the name is unknown
func (c *CharSet) addNamedASCII(name string, negate bool) bool {
	rs, ok := posixClasses[name]
	if !ok {
		return false
	}
	if negate {
		c.addNegativeRanges(rs)
	} else {
		c.addRanges(rs)
	}
	return true
}

type singleRangeSorter []SingleRange

func (p singleRangeSorter) Len() int           { return len(p) }
func (p singleRangeSorter) Less(i, j int) bool { return p[i].First < p[j].First }
func (p singleRangeSorter) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Logic to reduce a character class to a unique, sorted form.
func (c *CharSet) canonicalize() {
	var i, j int
	var last rune

	//
	// Find and eliminate overlapping or abutting ranges
	//

	if len(c.ranges) > 1 {
		sort.Sort(singleRangeSorter(c.ranges))

		done := false

		for i, j = 1, 0; ; i++ {
			for last = c.ranges[j].Last; ; i++ {
				if i == len(c.ranges) || last == utf8.MaxRune {
					done = true
					break
				}

				CurrentRange := c.ranges[i]
				if CurrentRange.First > last+1 {
					break
				}

				if last < CurrentRange.Last {
					last = CurrentRange.Last
				}
			}

			c.ranges[j] = SingleRange{First: c.ranges[j].First, Last: last}

			j++

			if done {
				break
			}

			if j < i {
				c.ranges[j] = c.ranges[i]
			}
		}

		c.ranges = c.ranges[:j]
	}

}

func complementRanges(ranges []SingleRange) []SingleRange {
	var ret []SingleRange
	var hi rune
	for _, r := range ranges {
		if hi < r.First {
			ret = append(ret, SingleRange{hi, r.First - 1})
		}
		hi = r.Last + 1
	}
	if hi <= utf8.MaxRune && (len(ranges) == 0 || ranges[len(ranges)-1].Last != utf8.MaxRune) {
		ret = append(ret, SingleRange{hi, utf8.MaxRune})
	}
	return ret
}

// IsSingleton reports whether the set matches exactly one character
func (c CharSet) IsSingleton() bool {
	return !c.negate && //negated is multiple chars
		len(c.categories) == 0 && len(c.ranges) == 1 && // multiple ranges and unicode classes represent multiple chars
		c.sub == nil && // subtraction means we've got multiple chars
		c.ranges[0].First == c.ranges[0].Last // first and last equal means we're just 1 char
}

// IsSingletonInverse reports whether the set matches everything but exactly one character
func (c CharSet) IsSingletonInverse() bool {
	return c.negate && //same as above, but requires negated
		len(c.categories) == 0 && len(c.ranges) == 1 && // multiple ranges and unicode classes represent multiple chars
		c.sub == nil && // subtraction means we've got multiple chars
		c.ranges[0].First == c.ranges[0].Last // first and last equal means we're just 1 char
}

// SingletonChar returns the char of a singleton (or singleton inverse) set
func (c CharSet) SingletonChar() rune {
	return c.ranges[0].First
}

func (c CharSet) IsEmpty() bool {
	return !c.negate && !c.anything && len(c.ranges) == 0 && len(c.categories) == 0 && c.sub == nil
}

// IsAnything reports whether the set matches every character
func (c CharSet) IsAnything() bool {
	if c.anything && c.sub == nil {
		return true
	}
	if !c.negate && len(c.categories) == 0 && c.sub == nil && len(c.ranges) == 1 &&
		c.ranges[0].First == 0 && c.ranges[0].Last == utf8.MaxRune {
		return true
	}
	return c.negate && len(c.ranges) == 0 && len(c.categories) == 0 && c.sub == nil
}

func (c CharSet) IsNegated() bool {
	return c.negate
}

func (c CharSet) IsMergeable() bool {
	return !c.IsNegated() && !c.HasSubtraction()
}

func (c CharSet) HasSubtraction() bool {
	return c.sub != nil
}

// GetIfNRanges returns the ranges of the set when it is made only of at most n ranges
// (optionally negated) with no categories or subtraction
func (c CharSet) GetIfNRanges(n int) ([]SingleRange, bool) {
	if c.anything || len(c.categories) > 0 || c.sub != nil || len(c.ranges) == 0 || len(c.ranges) > n {
		return nil, false
	}
	return c.ranges, true
}

// GetSetChars returns the characters of a small positive set, or nil if the
// set isn't made of at most maxChars individual characters
func (c CharSet) GetSetChars(maxChars int) []rune {
	if c.negate || c.anything || len(c.categories) > 0 || c.sub != nil {
		return nil
	}
	var ret []rune
	for _, r := range c.ranges {
		if int(r.Last-r.First)+1+len(ret) > maxChars {
			return nil
		}
		for ch := r.First; ch <= r.Last; ch++ {
			ret = append(ret, ch)
		}
	}
	return ret
}

// MayOverlap reports whether the two sets could possibly match the same character.
// It answers true whenever it can't prove the sets disjoint.
func (c CharSet) MayOverlap(o CharSet) bool {
	if c.anything || o.anything || len(c.categories) > 0 || len(o.categories) > 0 {
		return true
	}
	if c.sub != nil || o.sub != nil {
		// subtraction only removes characters so ignoring it stays conservative
		cc, oc := c, o
		cc.sub, oc.sub = nil, nil
		return cc.MayOverlap(oc)
	}
	switch {
	case !c.negate && !o.negate:
		return rangesIntersect(c.ranges, o.ranges)
	case c.negate && o.negate:
		// two complements of finite sets always share something
		return true
	case c.negate:
		return !rangesContain(c.ranges, o.ranges)
	default:
		return !rangesContain(o.ranges, c.ranges)
	}
}

func rangesIntersect(a, b []SingleRange) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Last < b[j].First {
			i++
		} else if b[j].Last < a[i].First {
			j++
		} else {
			return true
		}
	}
	return false
}

// rangesContain reports whether every range in inner is covered by outer
func rangesContain(outer, inner []SingleRange) bool {
	for _, r := range inner {
		ok := false
		for _, o := range outer {
			if o.First <= r.First && r.Last <= o.Last {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// containsAsciiIgnoreCaseCharacter reports whether the set is exactly the upper
// and lower case version of a single ASCII letter, e.g. [Aa]
func (c CharSet) containsAsciiIgnoreCaseCharacter(twoChars []rune) (bool, []rune) {
	twoChars = c.GetSetChars(2)
	if len(twoChars) != 2 {
		return false, twoChars
	}
	return twoChars[0] < unicode.MaxASCII && twoChars[1] < unicode.MaxASCII &&
		twoChars[0]|0x20 == twoChars[1] && twoChars[1] >= 'a' && twoChars[1] <= 'z', twoChars
}

// IsWordChar reports whether the rune belongs to \w
func IsWordChar(r rune) bool {
	return helpers.IsWordChar(r)
}

// IsBoundaryWordChar is IsWordChar plus the joiners used by \b
func IsBoundaryWordChar(r rune) bool {
	return helpers.IsWordChar(r) || r == '\u200D' || r == '\u200C'
}

func IsECMAWordChar(r rune) bool {
	return 'A' <= r && r <= 'Z' || 'a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '_'
}

// Produces a human-readable description for a single character.
func CharDescription(ch rune) string {
	b := &bytes.Buffer{}
	escape(b, ch, false)
	return b.String()
}

const meta = `\.+*?()|[]{}^$# `

func escape(b *bytes.Buffer, r rune, force bool) {
	if unicode.IsPrint(r) {
		if strings.IndexRune(meta, r) >= 0 || force {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
		return
	}

	switch r {
	case '\a':
		b.WriteString(`\a`)
	case '\f':
		b.WriteString(`\f`)
	case '\n':
		b.WriteString(`\n`)
	case '\r':
		b.WriteString(`\r`)
	case '\t':
		b.WriteString(`\t`)
	case '\v':
		b.WriteString(`\v`)
	default:
		if r < 0x100 {
			b.WriteString(`\x`)
			s := strconv.FormatInt(int64(r), 16)
			if len(s) == 1 {
				b.WriteRune('0')
			}
			b.WriteString(s)
			break
		}
		b.WriteString(`\u`)
		b.WriteString(strconv.FormatInt(int64(r), 16))
	}
}

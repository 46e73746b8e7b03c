package dot

// Normalize converts a graph description into the single-line dialect
// expected by effect-estimation tools. Statements keep their source order;
// whitespace, comments and redundant separators are dropped.
//
// Unlike offset-based trimming, malformed input is reported as a
// *SyntaxError instead of producing corrupted text.
func Normalize(src string) (string, error) {
	doc, err := ParseDocument(src)
	if err != nil {
		return "", err
	}
	return doc.Target(), nil
}

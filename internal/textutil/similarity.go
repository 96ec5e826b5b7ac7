package textutil

import "github.com/antzucaro/matchr"

// Similarity scores how alike two phrases are on a 0..1 scale using
// Jaro-Winkler distance over their normalized forms. Identical phrases
// score 1; two empty phrases also score 1.
func Similarity(a, b string) float64 {
	na := NormalizeText(a)
	nb := NormalizeText(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	return matchr.JaroWinkler(na, nb, false)
}

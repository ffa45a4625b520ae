package matching

import "strings"

// accentReplacer folds the accented characters seen in Brazilian bank memos
// and ledger descriptions to their ASCII base, upper and lower case.
var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
	"Á", "A", "À", "A", "Â", "A", "Ã", "A", "Ä", "A",
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"Í", "I", "Ì", "I", "Î", "I", "Ï", "I",
	"Ó", "O", "Ò", "O", "Ô", "O", "Õ", "O", "Ö", "O",
	"Ú", "U", "Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C", "Ñ", "N",
)

// NormalizeText uppercases, strips accents and collapses whitespace so text
// comparison is case- and accent-insensitive.
func NormalizeText(s string) string {
	s = accentReplacer.Replace(s)
	s = strings.ToUpper(s)
	return strings.Join(strings.Fields(s), " ")
}

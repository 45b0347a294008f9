package texconv

// accentMap maps an accent marker concatenated with a base ASCII letter to
// the accented Unicode codepoint.
var accentMap = map[string]rune{
	// grave (`)
	"`a": 'à', "`e": 'è', "`i": 'ì', "`o": 'ò', "`u": 'ù', "`n": 'ǹ',
	"`A": 'À', "`E": 'È', "`I": 'Ì', "`O": 'Ò', "`U": 'Ù', "`N": 'Ǹ',

	// acute (')
	"'a": 'á', "'e": 'é', "'i": 'í', "'o": 'ó', "'u": 'ú', "'y": 'ý', "'n": 'ń', "'c": 'ć', "'s": 'ś', "'z": 'ź',
	"'A": 'Á', "'E": 'É', "'I": 'Í', "'O": 'Ó', "'U": 'Ú', "'Y": 'Ý', "'N": 'Ń', "'C": 'Ć', "'S": 'Ś', "'Z": 'Ź',

	// circumflex (^)
	"^a": 'â', "^e": 'ê', "^i": 'î', "^o": 'ô', "^u": 'û',
	"^A": 'Â', "^E": 'Ê', "^I": 'Î', "^O": 'Ô', "^U": 'Û',

	// umlaut/diaeresis (")
	`"a`: 'ä', `"e`: 'ë', `"i`: 'ï', `"o`: 'ö', `"u`: 'ü', `"y`: 'ÿ',
	`"A`: 'Ä', `"E`: 'Ë', `"I`: 'Ï', `"O`: 'Ö', `"U`: 'Ü',

	// tilde (~)
	"~a": 'ã', "~n": 'ñ', "~o": 'õ',
	"~A": 'Ã', "~N": 'Ñ', "~O": 'Õ',

	// macron (=)
	"=a": 'ā', "=e": 'ē', "=i": 'ī', "=o": 'ō', "=u": 'ū',
	"=A": 'Ā', "=E": 'Ē', "=I": 'Ī', "=O": 'Ō', "=U": 'Ū',

	// dot above (.)
	".c": 'ċ', ".e": 'ė', ".g": 'ġ', ".z": 'ż', ".Z": 'Ż',
	".C": 'Ċ', ".E": 'Ė', ".G": 'Ġ',

	// breve (u)
	"ua": 'ă', "ue": 'ĕ', "ug": 'ğ', "ui": 'ĭ', "uo": 'ŏ', "uu": 'ŭ',
	"uA": 'Ă', "uG": 'Ğ',

	// caron (v)
	"vc": 'č', "vs": 'š', "vz": 'ž', "ve": 'ě', "vr": 'ř', "vn": 'ň', "vd": 'ď', "vt": 'ť',
	"vC": 'Č', "vS": 'Š', "vZ": 'Ž', "vR": 'Ř',

	// double acute / Hungarian umlaut (H)
	"Ho": 'ő', "Hu": 'ű',
	"HO": 'Ő', "HU": 'Ű',

	// cedilla (c)
	"cc": 'ç', "cs": 'ş', "ct": 'ţ',
	"cC": 'Ç', "cS": 'Ş', "cT": 'Ţ',

	// dot below (d)
	"ds": 'ṣ', "dt": 'ṭ', "dh": 'ḥ', "dl": 'ḷ', "dz": 'ẓ',

	// bar/macron below (b)
	"bb": 'ḇ', "bl": 'ḻ',

	// ring above (r)
	"ra": 'å', "ru": 'ů',
	"rA": 'Å', "rU": 'Ů',

	// ogonek (k)
	"ka": 'ą', "ke": 'ę',
	"kA": 'Ą', "kE": 'Ę',
}

// controlSymbols maps a named control word (no leading backslash) to its
// Unicode replacement.
var controlSymbols = map[string]rune{
	"oe":        'œ',
	"OE":        'Œ',
	"ae":        'æ',
	"AE":        'Æ',
	"aa":        'å',
	"AA":        'Å',
	"o":         'ø',
	"O":         'Ø',
	"l":         'ł',
	"L":         'Ł',
	"ss":        'ß',
	"i":         'ı',
	"j":         'ȷ',
	"P":         '¶',
	"S":         '§',
	"dag":       '†',
	"ddag":      '‡',
	"pounds":    '£',
	"copyright": '©',
	"dots":      '…',
	"ldots":     '…',
}

// mathSymbols maps a named math control word, valid only inside $...$, to
// its Unicode replacement. Unrecognized math control words are
// left literal.
var mathSymbols = map[string]rune{
	"times": '×',
	"pm":    '±',
	"mp":    '∓',
	"cdot":  '·',
	"leq":   '≤',
	"geq":   '≥',
	"neq":   '≠',
	"infty": '∞',
	"alpha": 'α',
	"beta":  'β',
	"gamma": 'γ',
	"delta": 'δ',
	"pi":    'π',
	"sigma": 'σ',
	"mu":    'μ',
	"lambda": 'λ',
}

// accentLetters is the set of accent markers that are themselves ASCII
// letters, as opposed to punctuation markers like ` or ". A
// single letter following a backslash is still a maximal run of letters
// under TeX's control-sequence rule, so these are only recognized as
// accents when the run is exactly one letter long.
var accentLetters = map[rune]bool{
	'u': true, 'v': true, 'H': true, 't': true,
	'c': true, 'd': true, 'b': true, 'r': true, 'k': true,
}

func isAccentMarker(ch rune) bool {
	switch ch {
	case '`', '\'', '^', '"', '~', '=', '.':
		return true
	}
	return accentLetters[ch]
}

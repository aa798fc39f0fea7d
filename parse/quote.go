package parse

import "errors"

var unescapes = map[rune]rune{
	'\\': '\\',
	'"':  '"',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// unquoteAttr takes a double-quoted attribute value (including the
// surrounding quotes) and returns the unquoted string, along with any error
// encountered.
func unquoteAttr(s string) (string, error) {
	n := len(s)
	if n < 2 || s[0] != '"' || s[n-1] != '"' {
		return "", errors.New("value not surrounded by quotes")
	}

	s = s[1 : n-1]
	if !contains(s, '\\') {
		return s, nil
	}

	var escaping = false
	var result = make([]rune, 0, len(s))
	for _, ch := range s {
		if escaping {
			var unescaped, ok = unescapes[ch]
			if !ok {
				return "", errors.New(`unrecognized escape code \` + string(ch))
			}
			result = append(result, unescaped)
			escaping = false
			continue
		}
		if ch == '\\' {
			escaping = true
			continue
		}
		result = append(result, ch)
	}
	if escaping {
		return "", errors.New("value ends in an incomplete escape")
	}
	return string(result), nil
}

func contains(str string, ch byte) bool {
	for i := 0; i < len(str); i++ {
		if str[i] == ch {
			return true
		}
	}
	return false
}

package usecase

// truncate caps s at max characters. Rune-based: the texts are Korean.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// excerpt is truncate with an ellipsis appended when something was cut
func excerpt(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

package common

// IsValidIdentifier returns whether or not a given string would be a valid
// identifier (project name, function name, etc.)
func IsValidIdentifier(idstr string) bool {
	if len(idstr) == 0 {
		return false
	}

	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}

package aliases

// File represents the top-level structure of the aliases file.
type File struct {
	Aliases []Rule `yaml:"aliases"`
}

// Rule attaches extra names to every candidate it matches.
// Match is compared case-insensitively against the file name, the full
// path and the display name.
type Rule struct {
	Match string   `yaml:"match"`
	Names []string `yaml:"names"`
}

package locations

// File is the top-level structure of locations.yaml: the list of embassy and
// consulate posts the CEAC dropdown knows about.
type File struct {
	Locations []Entry `yaml:"locations"`
}

// Entry is one post. Name must match the dropdown option text on the status
// form; aliases are accepted from clients and resolved to Name.
type Entry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
}

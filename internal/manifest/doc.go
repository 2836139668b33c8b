// Package manifest loads and validates the checkout configuration document.
//
// The document lists every tracked repository with its remote descriptor and
// optional platform allow-list, the branch schemes that map repositories to
// branches, and the clone URL patterns. JSON and YAML encodings are accepted;
// both are parsed with yaml.v3 and decoded strictly with mapstructure so that
// misspelled keys are reported instead of ignored.
package manifest

package manifest

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const branchSchemesKeyConstant = "branch-schemes"

// FileReader reads the raw configuration document.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Load reads, parses, and validates the document stored at documentPath.
func Load(fileReader FileReader, documentPath string) (Document, error) {
	if fileReader == nil {
		return Document{}, ErrFileReaderNotConfigured
	}

	documentContents, readError := fileReader.ReadFile(documentPath)
	if readError != nil {
		return Document{}, ConfigurationError{Path: documentPath, Message: readDocumentMessageConstant, Cause: readError}
	}

	document, parseError := Parse(documentContents)
	if parseError != nil {
		return Document{}, withPath(parseError, documentPath)
	}
	if validationError := Validate(document); validationError != nil {
		return Document{}, withPath(validationError, documentPath)
	}
	return document, nil
}

// Parse decodes a JSON or YAML document. Unknown keys and duplicate branch-scheme names are
// reported as ConfigurationError; semantic checks are left to Validate.
func Parse(documentContents []byte) (Document, error) {
	var rootNode yaml.Node
	if unmarshalError := yaml.Unmarshal(documentContents, &rootNode); unmarshalError != nil {
		return Document{}, ConfigurationError{Message: parseDocumentMessageConstant, Cause: unmarshalError}
	}
	if duplicateError := detectDuplicateSchemeNames(&rootNode); duplicateError != nil {
		return Document{}, duplicateError
	}

	genericDocument := map[string]any{}
	if len(rootNode.Content) > 0 {
		if decodeError := rootNode.Decode(&genericDocument); decodeError != nil {
			return Document{}, ConfigurationError{Message: parseDocumentMessageConstant, Cause: decodeError}
		}
	}

	var document Document
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &document,
		TagName:     "mapstructure",
	})
	if decoderError != nil {
		return Document{}, decoderError
	}
	if decodeError := decoder.Decode(genericDocument); decodeError != nil {
		return Document{}, ConfigurationError{Message: decodeDocumentMessageConstant, Cause: decodeError}
	}

	for repositoryName, repository := range document.Repositories {
		repository.Name = repositoryName
		document.Repositories[repositoryName] = repository
	}
	return document, nil
}

// detectDuplicateSchemeNames walks the raw node tree because decoding into a map would
// silently keep only the last duplicate.
func detectDuplicateSchemeNames(rootNode *yaml.Node) error {
	if rootNode.Kind != yaml.DocumentNode || len(rootNode.Content) == 0 {
		return nil
	}
	schemesNode := mappingValue(rootNode.Content[0], branchSchemesKeyConstant)
	if schemesNode == nil || schemesNode.Kind != yaml.MappingNode {
		return nil
	}

	seenSchemeNames := make(map[string]struct{}, len(schemesNode.Content)/2)
	for keyIndex := 0; keyIndex+1 < len(schemesNode.Content); keyIndex += 2 {
		schemeName := schemesNode.Content[keyIndex].Value
		if _, seen := seenSchemeNames[schemeName]; seen {
			return ConfigurationError{Message: fmt.Sprintf(duplicateSchemeMessageTemplateConstant, schemeName)}
		}
		seenSchemeNames[schemeName] = struct{}{}
	}
	return nil
}

func mappingValue(mappingNode *yaml.Node, key string) *yaml.Node {
	if mappingNode == nil || mappingNode.Kind != yaml.MappingNode {
		return nil
	}
	for keyIndex := 0; keyIndex+1 < len(mappingNode.Content); keyIndex += 2 {
		if mappingNode.Content[keyIndex].Value == key {
			return mappingNode.Content[keyIndex+1]
		}
	}
	return nil
}

func withPath(failure error, documentPath string) error {
	if configurationError, isConfigurationError := failure.(ConfigurationError); isConfigurationError {
		configurationError.Path = documentPath
		return configurationError
	}
	return failure
}

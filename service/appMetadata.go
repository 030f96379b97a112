package service

const (
	AppIdentifier = "https://apps.clams.ai/named_entity_linking"
	AppVersion    = "0.0.8"

	appURL          = "https://github.com/JinnyViboonlarp/app-nel"
	appLicense      = "Apache 2.0"
	analyzerVersion = "3.1.2"
	analyzerLicense = "MIT"
	mmifVersion     = "0.4.0"
)

// AppMetadata describes the app to the annotation framework: what it is,
// which annotation types it consumes and which it produces.
type AppMetadata struct {
	Identifier      string   `json:"identifier"`
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	AppVersion      string   `json:"app_version"`
	AppLicense      string   `json:"app_license"`
	AnalyzerVersion string   `json:"analyzer_version"`
	AnalyzerLicense string   `json:"analyzer_license"`
	MmifVersion     string   `json:"mmif_version"`
	Input           []string `json:"input"`
	Output          []string `json:"output"`
}

func NewAppMetadata() AppMetadata {
	return AppMetadata{
		Identifier:      AppIdentifier,
		URL:             appURL,
		Name:            "NEL with Wikidata",
		Description:     "Link all named entities in an MMIF file with their Wikidata information.",
		AppVersion:      AppVersion,
		AppLicense:      appLicense,
		AnalyzerVersion: analyzerVersion,
		AnalyzerLicense: analyzerLicense,
		MmifVersion:     mmifVersion,
		Input:           []string{NamedEntityURI},
		Output:          []string{LinkedNamedEntityURI, LinkedNamedEntityRelationURI},
	}
}

package inference

import (
	_ "embed" // embedding the default model artifact
)

// Default model version for the embedded artifact.
const DefaultModelVersion = "cropsentry-dense-int8-v1"

//go:embed data/model.json
var defaultModelData []byte

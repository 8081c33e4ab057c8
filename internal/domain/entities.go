package domain

// Species is a resolved name pair. CommonName and ScientificName are
// either both set or both empty.
type Species struct {
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName"`
}

// Identification is the outcome of a successful resolver run.
type Identification struct {
	Species
	ReferenceImageURL string `json:"imageUrl,omitempty"`
}

func (s Species) Empty() bool {
	return s.CommonName == "" && s.ScientificName == ""
}

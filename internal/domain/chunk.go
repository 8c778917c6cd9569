package domain

// Metadata keys used by the vector index. The index stores two alias pairs
// (flowStation/flowstation, date/productionDate); alias resolution happens
// once here, at the retrieval boundary.
const (
	MetaKeyCollection     = "collection"
	MetaKeyAsset          = "asset"
	MetaKeyFlowStation    = "flowStation"
	MetaKeyFlowStationAlt = "flowstation"
	MetaKeyDate           = "date"
	MetaKeyProductionDate = "productionDate"
)

// ChunkMetadata carries the record-level attributes attached to a retrieved
// chunk. Every field is optional; absent fields are empty strings and are
// omitted from presentation.
type ChunkMetadata struct {
	Collection     string
	Asset          string
	FlowStation    string
	ProductionDate string
}

// IsEmpty reports whether no metadata field is set.
func (m ChunkMetadata) IsEmpty() bool {
	return m == ChunkMetadata{}
}

// MetadataFromStrings resolves a raw string map from the index into a typed
// record. The primary alias key wins when both spellings are present.
func MetadataFromStrings(raw map[string]string) ChunkMetadata {
	meta := ChunkMetadata{
		Collection: raw[MetaKeyCollection],
		Asset:      raw[MetaKeyAsset],
	}
	if v := raw[MetaKeyFlowStation]; v != "" {
		meta.FlowStation = v
	} else {
		meta.FlowStation = raw[MetaKeyFlowStationAlt]
	}
	if v := raw[MetaKeyDate]; v != "" {
		meta.ProductionDate = v
	} else {
		meta.ProductionDate = raw[MetaKeyProductionDate]
	}
	return meta
}

// ToStrings converts the typed record back to the map shape the index
// stores. Empty fields are omitted entirely.
func (m ChunkMetadata) ToStrings() map[string]string {
	raw := make(map[string]string, 4)
	if m.Collection != "" {
		raw[MetaKeyCollection] = m.Collection
	}
	if m.Asset != "" {
		raw[MetaKeyAsset] = m.Asset
	}
	if m.FlowStation != "" {
		raw[MetaKeyFlowStation] = m.FlowStation
	}
	if m.ProductionDate != "" {
		raw[MetaKeyProductionDate] = m.ProductionDate
	}
	return raw
}

// RetrievalResult is one candidate chunk as returned by the vector index:
// document text, resolved metadata, and the index's own distance measure.
// The index's parallel documents/metadatas/distances sequences are zipped
// into this shape once at the adapter boundary.
type RetrievalResult struct {
	Document string
	Metadata ChunkMetadata
	Distance float32
}

// ScoredChunk is a retrieval result after cross-encoder reranking. Score is
// model-defined; higher means more relevant, and values are only comparable
// within a single query turn.
type ScoredChunk struct {
	Document string
	Metadata ChunkMetadata
	Score    float32
}

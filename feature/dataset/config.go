package dataset

// Config holds the key-layout conventions for the dataset collection.
type Config struct {
	// SimPrefix is the key prefix holding simulation datasets.
	SimPrefix string `mapstructure:"sim_prefix" default:"acic22/simulations"`
	// TruthPrefix is the key prefix holding ground-truth datasets.
	TruthPrefix string `mapstructure:"truth_prefix" default:"acic22/truth"`
	// MetadataSource locates the simulation index document. It may be a local
	// filesystem path or a remote key.
	MetadataSource string `mapstructure:"metadata_source" default:"acic22/metadata/acic22_metadata.json"`
	// DGPInfoSource locates the DGP info document (local path or remote key).
	DGPInfoSource string `mapstructure:"dgp_info_source" default:"acic22/metadata/acic22_dgp_info.json"`
	// MetaCacheCapacity bounds the parsed-metadata cache; 0 means unbounded.
	MetaCacheCapacity int `mapstructure:"meta_cache_capacity" default:"0"`
}

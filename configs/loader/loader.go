package loader

// ConfigLoader supplies raw key-value configuration to configs.MustLoad.
type ConfigLoader interface {
	Load() (map[string]string, error)
}

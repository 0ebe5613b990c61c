package bind_group_provider

// BindGroupProviderOption configures a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithGroup sets the bind group index the provider is set at when drawing. Defaults to 0.
func WithGroup(group int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.group = max(group, 0)
	}
}

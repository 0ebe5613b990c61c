package bind_group_provider

// BufferWrite is one upload into a provider's buffer at a byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Clipped returns the part of Data that fits the bound buffer, or false when the provider is
// unbound, the binding is unknown or Offset lies past the end.
func (w BufferWrite) Clipped() ([]byte, bool) {
	if w.Provider == nil {
		return nil, false
	}
	size := w.Provider.Size(w.Binding)
	if size == 0 || w.Offset >= size {
		return nil, false
	}
	if room := size - w.Offset; uint64(len(w.Data)) > room {
		return w.Data[:room], true
	}
	return w.Data, true
}

package meta

// TableNamer lets a struct passed to FromStruct name its table instead of
// the plural snake_case default that NewRegistry infers.
type TableNamer interface {
	TableName() string
}

// ResolveTableName returns T's TableName when T (or *T) is a TableNamer,
// and fallback otherwise. FromStruct passes "" so that NewRegistry fills
// in the default.
func ResolveTableName[T any](fallback string) string {
	var zero T
	if tn, ok := any(&zero).(TableNamer); ok {
		return tn.TableName()
	}
	return fallback
}

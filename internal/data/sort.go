package data

// Shared sort direction handling for list queries. Column allow-lists stay
// per-repository since each table exposes different sortable columns.

const (
	sortDirAsc  = "ASC"
	sortDirDesc = "DESC"
)

func allowedDirs() map[string]string {
	return map[string]string{
		"asc":  sortDirAsc,
		"desc": sortDirDesc,
	}
}

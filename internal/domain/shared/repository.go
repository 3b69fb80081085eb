package shared

// DefaultPageSize is the page size used for bulk dataset loads. Bulk-read
// collaborators page through their tables so that loading a large dataset
// never requires holding the driver's whole result set alongside the
// decoded records.
const DefaultPageSize = 5000

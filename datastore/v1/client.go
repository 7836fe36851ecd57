package v1

type DatastoreClient struct {
	Transport *Transport
	Records   *RecordEndpoint
	Runs      *RunEndpoint
}

// NewDatastoreClient initializes the API client for the given record table.
// Sync runs go to the table named by runTable; an empty name disables them.
func NewDatastoreClient(baseURL, apiKey, recordTable, runTable string) *DatastoreClient {
	t := NewTransport(baseURL, apiKey)
	return &DatastoreClient{
		Transport: t,
		Records:   &RecordEndpoint{transport: t, table: recordTable, pageSize: defaultPageSize},
		Runs:      &RunEndpoint{transport: t, table: runTable},
	}
}

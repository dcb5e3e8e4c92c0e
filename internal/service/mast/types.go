package mast

import "encoding/json"

const (
	serviceFiltered = "Mast.Caom.Filtered"
	serviceAll      = "Mast.Caom.All"

	statusComplete  = "COMPLETE"
	statusExecuting = "EXECUTING"
	statusError     = "ERROR"

	facetCollection = "obs_collection"
	facetHistKey    = "hist"
)

// invokeRequest is the JSON document posted in the "request" form field.
type invokeRequest struct {
	Service           string      `json:"service"`
	Format            string      `json:"format"`
	Params            interface{} `json:"params"`
	Page              int         `json:"page,omitempty"`
	PageSize          int         `json:"pagesize,omitempty"`
	RemoveNullColumns bool        `json:"removenullcolumns"`
	TimeOut           int         `json:"timeout,omitempty"`
	ClearCache        bool        `json:"clearcache"`
}

type filteredParams struct {
	Columns string   `json:"columns"`
	Filters []filter `json:"filters"`
}

type filter struct {
	ParamName string        `json:"paramName"`
	Values    []interface{} `json:"values"`
}

type mjdRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type invokeResponse struct {
	Status string          `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
	Fields []field         `json:"fields"`
	Paging *paging         `json:"paging"`
}

type field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	PagesFiltered int `json:"pagesFiltered"`
	Rows          int `json:"rows"`
	RowsFiltered  int `json:"rowsFiltered"`
	RowsTotal     int `json:"rowsTotal"`
}

// extjsData is the facet payload returned by Mast.Caom.All in extjs format.
type extjsData struct {
	Tables []struct {
		Columns []struct {
			Text               string `json:"text"`
			ExtendedProperties struct {
				HistObj map[string]json.RawMessage `json:"histObj"`
			} `json:"ExtendedProperties"`
		} `json:"Columns"`
	} `json:"Tables"`
}

type sessionInfo struct {
	Anon bool `json:"anon"`
	Info struct {
		Username string `json:"ezid"`
	} `json:"info"`
}

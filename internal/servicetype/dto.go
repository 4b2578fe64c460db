package servicetype

type ServiceTypeResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ServiceTypesResponse struct {
	ServiceTypes []ServiceTypeResponse `json:"service_types"`
}

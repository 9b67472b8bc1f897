package server

import "net/http"

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Store.ListEquipment(r.Context())
	respondList(w, items, err, "Failed to fetch equipment")
}

func (s *Server) handleMaintenanceHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Store.ListMaintenanceHistory(r.Context(), r.URL.Query().Get("equipment_id"))
	respondList(w, items, err, "Failed to fetch maintenance history")
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Store.ListAnomalyReports(r.Context(), r.URL.Query().Get("status"))
	respondList(w, items, err, "Failed to fetch anomaly reports")
}

func (s *Server) handleWorkOrders(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Store.ListWorkOrders(r.Context(), r.URL.Query().Get("status"))
	respondList(w, items, err, "Failed to fetch work orders")
}

func (s *Server) handleInspectionPlans(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Store.ListInspectionPlans(r.Context())
	respondList(w, items, err, "Failed to fetch inspection plans")
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Store.DashboardStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch dashboard stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func respondList[T any](w http.ResponseWriter, items []T, err error, message string) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, message, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

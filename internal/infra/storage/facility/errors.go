package facility

import "errors"

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = errors.New("facility.repository: facility not found")

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = errors.New("facility.repository: court not found")

	// ErrOperatingHoursNotFound возвращается, когда расписание на день недели не задано
	ErrOperatingHoursNotFound = errors.New("facility.repository: operating hours not found")

	// ErrMaintenanceNotFound возвращается, когда активного обслуживания нет
	ErrMaintenanceNotFound = errors.New("facility.repository: maintenance not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("facility.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("facility.repository: failed to scan row")
)

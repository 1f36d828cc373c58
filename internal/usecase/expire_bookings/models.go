package expire_bookings

// DefaultBatchSize размер выборки за один проход
const DefaultBatchSize = 100

// Result итог одного прохода
type Result struct {
	Scanned int
	Expired int
	Skipped int // бронирование оплачено или изменено параллельно
	Failed  int
}

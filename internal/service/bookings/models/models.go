package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// UpdateStatusRequest запрос владельца площадки на изменение статуса
type UpdateStatusRequest struct {
	UserID int64  `json:"-"`
	Status string `json:"status"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetFacilityBookingsRequest запрос на получение бронирований площадки
type GetFacilityBookingsRequest struct {
	UserID          int64       `json:"userId"`
	FacilityID      int64       `json:"facilityId"`
	CourtID         *int64      `json:"courtId,omitempty"`         // Фильтр по корту (опционально)
	StartDate       *types.Date `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *types.Date `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string     `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool        `json:"includeInactive,omitempty"` // Включить завершенные и отмененные
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetFacilityBookingsRequest) ToDomainFilter() (domain.BookingFilter, error) {
	facilityID := r.FacilityID
	filter := domain.BookingFilter{
		FacilityID:      &facilityID,
		CourtID:         r.CourtID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return filter, errors.New("endDate is before startDate")
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// PaymentResponse последняя попытка оплаты
type PaymentResponse struct {
	ID            int64      `json:"id"`
	Status        string     `json:"status"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	CheckoutURL   *string    `json:"checkoutUrl,omitempty"`
	FailureReason *string    `json:"failureReason,omitempty"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

// CouponResponse примененный купон
type CouponResponse struct {
	Code           string `json:"code"`
	DiscountAmount string `json:"discountAmount"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	FacilityID  int64  `json:"facilityId"`
	CourtID     int64  `json:"courtId"`
	TimeSlotID  *int64 `json:"timeSlotId,omitempty"`
	BookingDate string `json:"bookingDate"` // "2025-10-15"
	StartTime   string `json:"startTime"`   // "10:00"
	EndTime     string `json:"endTime"`
	Status      string `json:"status"`

	// Суммы в основной валюте, два знака после запятой
	TotalHours     string `json:"totalHours"`
	PricePerHour   string `json:"pricePerHour"`
	TotalAmount    string `json:"totalAmount"`
	PlatformFee    string `json:"platformFee"`
	Tax            string `json:"tax"`
	DiscountAmount string `json:"discountAmount"`
	FinalAmount    string `json:"finalAmount"`

	SpecialRequests    *string `json:"specialRequests,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`

	PaymentDeadline *time.Time       `json:"paymentDeadline,omitempty"`
	Payment         *PaymentResponse `json:"payment,omitempty"`
	Coupon          *CouponResponse  `json:"coupon,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	NoShowAt    *time.Time `json:"noShowAt,omitempty"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		FacilityID:         b.FacilityID,
		CourtID:            b.CourtID,
		TimeSlotID:         b.TimeSlotID,
		BookingDate:        b.BookingDate.String(),
		StartTime:          b.StartTime.String(),
		EndTime:            b.EndTime.String(),
		Status:             string(b.Status),
		TotalHours:         Money(b.TotalHours),
		PricePerHour:       Money(b.PricePerHour),
		TotalAmount:        Money(b.TotalAmount),
		PlatformFee:        Money(b.PlatformFee),
		Tax:                Money(b.Tax),
		DiscountAmount:     Money(b.DiscountAmount),
		FinalAmount:        Money(b.FinalAmount),
		SpecialRequests:    b.SpecialRequests,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		ConfirmedAt:        b.ConfirmedAt,
		CancelledAt:        b.CancelledAt,
		CompletedAt:        b.CompletedAt,
		NoShowAt:           b.NoShowAt,
	}
}

// FromDomainPayment конвертирует платеж в DTO
func FromDomainPayment(p *domain.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:            p.ID,
		Status:        string(p.Status),
		Amount:        Money(p.FinalAmount),
		Currency:      p.Currency,
		CheckoutURL:   p.CheckoutURL,
		FailureReason: p.FailureReason,
		ExpiresAt:     p.ExpiresAt,
		PaidAt:        p.PaidAt,
	}
}

// FromDomainBookingCoupon конвертирует примененный купон в DTO
func FromDomainBookingCoupon(bc *domain.BookingCoupon) *CouponResponse {
	if bc == nil {
		return nil
	}
	return &CouponResponse{
		Code:           bc.CouponCode,
		DiscountAmount: Money(bc.DiscountAmount),
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// Money форматирует сумму с двумя знаками после запятой
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

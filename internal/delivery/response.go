package delivery

import (
	"errors"
	"net/http"

	"github.com/MohamedWael200/APi-eCommerce/internal/checkout"
	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/gin-gonic/gin"
)

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// statusForError translates the workflow and storage error taxonomy into HTTP
// status codes at the request boundary.
func statusForError(err error) int {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingShippingAddress),
		errors.Is(err, checkout.ErrInvalidPaymentMethod),
		errors.Is(err, checkout.ErrInvalidCoupon),
		errors.Is(err, checkout.ErrInvalidStatus),
		errors.Is(err, checkout.ErrPaymentNotPending),
		errors.Is(err, checkout.ErrPaymentSetupFailed),
		errors.Is(err, checkout.ErrPaymentExecutionFailed),
		errors.Is(err, database.ErrInsufficientStock),
		errors.Is(err, database.ErrEmailTaken),
		errors.Is(err, database.ErrOTPNotFound):
		return http.StatusBadRequest

	case errors.Is(err, checkout.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrCartNotFound),
		errors.Is(err, database.ErrCartItemNotFound),
		errors.Is(err, database.ErrCouponNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrReviewNotFound):
		return http.StatusNotFound
	}

	var unavailable *checkout.ProductUnavailableError
	var insufficient *checkout.InsufficientStockError
	var transition *checkout.TransitionError
	if errors.As(err, &unavailable) || errors.As(err, &insufficient) || errors.As(err, &transition) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// fail writes err with its mapped status. Internal errors keep their detail
// out of the response body.
func fail(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
		ErrorResponse(c, status, "Internal server error")
		return
	}
	ErrorResponse(c, status, err.Error())
}

package orders

type Status string

const (
	StatusNew        Status = "NEW"
	StatusProcessing Status = "PROCESSING"
	StatusAccepted   Status = "ACCEPTED"
	StatusCancelled  Status = "CANCELLED"
	StatusFulfilled  Status = "FULFILLED"
	StatusReceived   Status = "RECEIVED"
	StatusPaid       Status = "PAID"
	StatusClosed     Status = "CLOSED"
)

// AllStatuses urut sesuai lifecycle. Urutannya cuma buat tampilan
// admin; transisi tidak dipaksa linier, admin boleh set nilai apa pun.
var AllStatuses = []Status{
	StatusNew,
	StatusProcessing,
	StatusAccepted,
	StatusCancelled,
	StatusFulfilled,
	StatusReceived,
	StatusPaid,
	StatusClosed,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// NeedsStockDecrement: stok dipotong hanya saat order masuk PAID
// pertama kali dan belum pernah dipotong lewat jalur mana pun.
func NeedsStockDecrement(prev, next Status, alreadyReserved bool) bool {
	return next == StatusPaid && prev != StatusPaid && !alreadyReserved
}

package types

// MaxQuantity bounds any single stock quantity or movement. Stock columns
// are INTEGER, so larger values could not be stored anyway.
const MaxQuantity = 1_000_000

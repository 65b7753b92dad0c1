// Package billing holds the domain model for forwarding completed-order
// billing data to an external financial manager.
//
// Key aggregates:
//   - TransactionRecord: one per basket, tracking whether the order's
//     billing data has reached the financial manager (state machine
//     TO_BE_SENT -> SENT_WITH_SUCCESS / SENT_WITH_ERROR)
//   - BillingProfile: the invoice details a buyer attaches to a basket,
//     including a country-validated VAT id
//   - Order: read model of the storefront's completed checkout
//
// The package also defines the repository ports and the FinancialManager
// port; infrastructure adapters implement them.
package billing

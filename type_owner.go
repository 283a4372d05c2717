package books

import "fmt"

// OwnerType tags the variant of an Owner.
type OwnerType int

const (
	OwnerUndefined OwnerType = iota
	OwnerCustomer
	OwnerVendor
	OwnerEmployee
	OwnerJob
)

func (t OwnerType) String() string {
	switch t {
	case OwnerCustomer:
		return "customer"
	case OwnerVendor:
		return "vendor"
	case OwnerEmployee:
		return "employee"
	case OwnerJob:
		return "job"
	default:
		return "undefined"
	}
}

// Owner is the closed sum over the business entities an invoice or job can
// be attached to. Each variant carries the reference to the engine-owned
// entity; this package never dereferences it, only tags it for dispatch.
//
// The unexported marker keeps the set of variants closed to this package.
type Owner interface {
	Type() OwnerType
	OwnerGuid() Guid
	owner()
}

// UndefinedOwner is the unset owner. InvoiceBuilder rejects it.
type UndefinedOwner struct{}

// CustomerOwner attaches to a customer.
type CustomerOwner struct{ Ref CustomerRef }

// VendorOwner attaches to a vendor (a bill rather than an invoice).
type VendorOwner struct{ Ref VendorRef }

// EmployeeOwner attaches to an employee (an expense voucher).
type EmployeeOwner struct{ Ref EmployeeRef }

// JobOwner attaches to a job, which in turn bills to a customer.
type JobOwner struct{ Ref JobRef }

func (UndefinedOwner) Type() OwnerType { return OwnerUndefined }
func (CustomerOwner) Type() OwnerType  { return OwnerCustomer }
func (VendorOwner) Type() OwnerType    { return OwnerVendor }
func (EmployeeOwner) Type() OwnerType  { return OwnerEmployee }
func (JobOwner) Type() OwnerType       { return OwnerJob }

func (UndefinedOwner) OwnerGuid() Guid  { return NullGuid }
func (o CustomerOwner) OwnerGuid() Guid { return o.Ref.Guid }
func (o VendorOwner) OwnerGuid() Guid   { return o.Ref.Guid }
func (o EmployeeOwner) OwnerGuid() Guid { return o.Ref.Guid }
func (o JobOwner) OwnerGuid() Guid      { return o.Ref.Guid }

func (UndefinedOwner) owner() {}
func (CustomerOwner) owner()  {}
func (VendorOwner) owner()    {}
func (EmployeeOwner) owner()  {}
func (JobOwner) owner()       {}

// EndOwner resolves the owner invoices ultimately bill to: a job chains to
// its customer through the engine, every other variant is its own end owner.
func EndOwner(e Engine, book BookRef, o Owner) (Owner, error) {
	switch v := o.(type) {
	case JobOwner:
		customer, err := e.CustomerOfJob(book, v.Ref)
		if err != nil {
			return nil, fmt.Errorf("resolving job %s: %w", v.Ref, err)
		}
		return CustomerOwner{Ref: customer}, nil
	case CustomerOwner, VendorOwner, EmployeeOwner:
		return v, nil
	case UndefinedOwner, nil:
		return nil, ErrMissingOwner
	default:
		return nil, fmt.Errorf("unsupported owner type %T", o)
	}
}

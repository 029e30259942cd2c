package cards

import "fmt"

type warningCode uint8

const (
	warnAuthorNotFound warningCode = iota
	warnNewerVersion
	warnNoNetworkID
	warnVerifierAppeared
	warnNotVerified
	warnUpdatingTypes
	warnTypesNotVerified
	warnGeneralVerifierAppeared
	warnTypesAlreadyThere
	warnMetaAlreadyThereBoth
	warnMetaAlreadyThereChain
	warnMetaAlreadyThereGeneral
	warnNetworkAlreadyHasEntries
	warnAddNetworkNotVerified
)

// Warning is a non-fatal notice shown to the user before approval.
type Warning struct {
	code         warningCode
	used, latest uint32
}

var (
	AuthorNotFound                  = Warning{code: warnAuthorNotFound}
	NoNetworkID                     = Warning{code: warnNoNetworkID}
	VerifierAppeared                = Warning{code: warnVerifierAppeared}
	NotVerified                     = Warning{code: warnNotVerified}
	UpdatingTypes                   = Warning{code: warnUpdatingTypes}
	TypesNotVerified                = Warning{code: warnTypesNotVerified}
	GeneralVerifierAppeared         = Warning{code: warnGeneralVerifierAppeared}
	TypesAlreadyThere               = Warning{code: warnTypesAlreadyThere}
	MetaAlreadyThereBothVerifier    = Warning{code: warnMetaAlreadyThereBoth}
	MetaAlreadyThereChainVerifier   = Warning{code: warnMetaAlreadyThereChain}
	MetaAlreadyThereGeneralVerifier = Warning{code: warnMetaAlreadyThereGeneral}
	NetworkAlreadyHasEntries        = Warning{code: warnNetworkAlreadyHasEntries}
	AddNetworkNotVerified           = Warning{code: warnAddNetworkNotVerified}
)

// NewerVersion warns that a transaction was built for an older runtime than
// the newest one on record.
func NewerVersion(used, latest uint32) Warning {
	return Warning{code: warnNewerVersion, used: used, latest: latest}
}

func (w Warning) String() string {
	switch w.code {
	case warnAuthorNotFound:
		return "Transaction author public key not found."
	case warnNewerVersion:
		return fmt.Sprintf("Transaction uses outdated runtime version %d. Latest known available version is %d.", w.used, w.latest)
	case warnNoNetworkID:
		return "Public key is on record, but not associated with the network used."
	case warnVerifierAppeared:
		return "Previously unverified network metadata now received signed by a verifier. If accepted, only metadata from same verifier could be received for this network."
	case warnNotVerified:
		return "Received network metadata is not verified."
	case warnUpdatingTypes:
		return "Updating types (really rare operation)."
	case warnTypesNotVerified:
		return "Received types information is not verified."
	case warnGeneralVerifierAppeared:
		return "Previously unverified information now received signed by a verifier. If accepted, updating types and adding networks could be verified only by this verifier."
	case warnTypesAlreadyThere:
		return "Received types information is already in database, only verifier could be added."
	case warnMetaAlreadyThereBoth:
		return "Received metadata is already in database, both general verifier and network verifier could be added."
	case warnMetaAlreadyThereChain:
		return "Received metadata is already in database, only network verifier could be added."
	case warnMetaAlreadyThereGeneral:
		return "Received metadata is already in database, only general verifier could be added."
	case warnNetworkAlreadyHasEntries:
		return "Add network message is received for network that already has some entries in the database."
	case warnAddNetworkNotVerified:
		return "Received new network information is not verified."
	}
	return fmt.Sprintf("warning(%d)", w.code)
}

package domain

import "fmt"

// Message catalogue keys.
const (
	KeyRecordIsNull         = "record.is.null"
	KeyInvalidAgency        = "invalid.agencyid"
	KeyParentPointsToItself = "parent.point.to.itself"
	KeyEnrichmentHasParent  = "enrichment.has.parent"
	KeyCommonWithLocals     = "common.record.with.locals"
	KeyReferenceNotExist    = "reference.record.not.exist"
	KeySaveEmptyRecord      = "save.empty.record"
	KeyDeleteNotExist       = "delete.record.not.exist"
	KeyDeleteChildren       = "delete.record.children"
	KeyDeleteReferenced     = "delete.record.referenced"
	KeyDeleteHoldings       = "delete.record.holdings"
	KeyDeleteLocalHoldings  = "delete.local.holdings"
)

var messages = map[string]string{
	KeyRecordIsNull:         "Posten er ikke angivet",
	KeyInvalidAgency:        "Biblioteksnummeret '%s' er ikke et tal",
	KeyParentPointsToItself: "Posten '%s:%d' peger på sig selv som hovedpost",
	KeyEnrichmentHasParent:  "Påhængsposten '%s:%d' må ikke pege på en hovedpost",
	KeyCommonWithLocals:     "Fællesposten kan ikke oprettes, da der findes lokale poster hos bibliotekerne: %v",
	KeyReferenceNotExist:    "Posten '%s:%d' peger på posten '%s:%d', som ikke findes",
	KeySaveEmptyRecord:      "Posten '%s:%d' kan ikke gemmes, da den er tom",
	KeyDeleteNotExist:       "Posten '%s:%d' kan ikke slettes, da den ikke findes",
	KeyDeleteChildren:       "Posten '%s:%d' kan ikke slettes, da den har underordnede poster: %v",
	KeyDeleteReferenced:     "Posten '%s:%d' kan ikke slettes, da andre poster peger på den: %v",
	KeyDeleteHoldings:       "Påhængsposten '%s:%d' kan ikke slettes, da der er beholdning hos: %v",
	KeyDeleteLocalHoldings:  "Den lokale post '%s:%d' kan ikke slettes, da der er beholdning hos: %v",
}

// Message renders the catalogue entry for key with args.
// Unknown keys render as the key itself.
func Message(key string, args ...any) string {
	format, ok := messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

package cql2

// tokenType enumerates cql2-text's lexical tokens, grounded on the
// token/type split in ha1tch/tsqlparser's token package.
type tokenType int

const (
	tokILLEGAL tokenType = iota
	tokEOF

	tokIDENT   // bare identifier / function or operator name
	tokNUMBER  // 12, 12.5, 1e10
	tokSTRING  // 'quoted string'
	tokGEOM    // POINT(...), POLYGON(...), etc. — lexed as one token

	tokLPAREN // (
	tokRPAREN // )
	tokLBRACK // [
	tokRBRACK // ]
	tokCOMMA  // ,
	tokDOT    // .

	tokPLUS     // +
	tokMINUS    // -
	tokSTAR     // *
	tokSLASH    // /
	tokPERCENT  // %
	tokCARET    // ^

	tokEQ  // =
	tokNEQ // <>
	tokLT  // <
	tokLTE // <=
	tokGT  // >
	tokGTE // >=

	tokAND // AND
	tokOR  // OR
	tokNOT // NOT

	tokTRUE
	tokFALSE
	tokNULL
	tokIS       // IS
	tokBETWEEN  // BETWEEN
	tokLIKE     // LIKE
	tokIN       // IN
	tokCASEI    // CASEI
	tokACCENTI  // ACCENTI
	tokTIMESTAMP // TIMESTAMP
	tokDATE      // DATE
	tokINTERVAL  // INTERVAL
	tokDOTDOT    // .. (open interval endpoint)
)

var keywords = map[string]tokenType{
	"AND":       tokAND,
	"OR":        tokOR,
	"NOT":       tokNOT,
	"TRUE":      tokTRUE,
	"FALSE":     tokFALSE,
	"NULL":      tokNULL,
	"IS":        tokIS,
	"BETWEEN":   tokBETWEEN,
	"LIKE":      tokLIKE,
	"IN":        tokIN,
	"CASEI":     tokCASEI,
	"ACCENTI":   tokACCENTI,
	"TIMESTAMP": tokTIMESTAMP,
	"DATE":      tokDATE,
	"INTERVAL":  tokINTERVAL,
}

// geometryKeywords are recognized as the start of a GEOMETRY terminal.
// BBOX is deliberately absent: BBOX(...) takes numeric arguments, not a
// WKT body, so it is parsed like a function call instead (see
// text_parser.go's parseIdentOrCall).
var geometryKeywords = map[string]bool{
	"POINT": true, "LINESTRING": true, "POLYGON": true,
	"MULTIPOINT": true, "MULTILINESTRING": true, "MULTIPOLYGON": true,
	"GEOMETRYCOLLECTION": true,
}

type token struct {
	typ tokenType
	lit string
	pos int
}

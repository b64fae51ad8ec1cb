// Package export serializa cortes del libro como documentos XML verificables.
package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

const (
	// NamespaceSnapshot espacio de nombres del snapshot.
	NamespaceSnapshot = "urn:stock-ledger:snapshot:1"
	// AlgSHA256 algoritmo del digest (sobre la forma canónica C14N sin el elemento Digest).
	AlgSHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"

	digestTag = "Digest"
)

// Snapshot documento generado y su digest hexadecimal.
type Snapshot struct {
	XML    []byte
	Digest string
}

// BuildSnapshot arma el XML del corte (valoración + déficits) y le agrega el digest
// SHA-256 de su forma canónica como último hijo del elemento raíz.
func BuildSnapshot(report *dto.ValuationReport) (*Snapshot, error) {
	if report == nil {
		return nil, fmt.Errorf("snapshot: reporte vacío")
	}
	root := buildRoot(report)

	digest, err := canonicalDigest(root)
	if err != nil {
		return nil, err
	}
	d := root.CreateElement(digestTag)
	d.CreateAttr("Algorithm", AlgSHA256)
	d.SetText(digest)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.AddChild(root)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("snapshot: serializar: %w", err)
	}
	return &Snapshot{XML: out, Digest: digest}, nil
}

// VerifySnapshot recalcula el digest del documento y lo compara con el declarado.
func VerifySnapshot(data []byte) (bool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false, fmt.Errorf("snapshot: parsear: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return false, fmt.Errorf("snapshot: documento sin raíz")
	}
	d := root.SelectElement(digestTag)
	if d == nil {
		return false, fmt.Errorf("snapshot: falta %s", digestTag)
	}
	declared := d.Text()
	root.RemoveChild(d)

	actual, err := canonicalDigest(root)
	if err != nil {
		return false, err
	}
	return actual == declared, nil
}

func buildRoot(report *dto.ValuationReport) *etree.Element {
	root := etree.NewElement("LedgerSnapshot")
	root.CreateAttr("xmlns", NamespaceSnapshot)
	root.CreateAttr("tenant", report.TenantID)
	root.CreateAttr("generatedAt", report.GeneratedAt.UTC().Format(time.RFC3339))

	val := root.CreateElement("Valuation")
	val.CreateAttr("total", report.Valuation.TotalValue.StringFixed(2))
	for _, it := range report.Valuation.Items {
		e := val.CreateElement("Item")
		e.CreateAttr("id", it.ItemID)
		e.CreateAttr("name", it.ItemName)
		e.CreateAttr("unit", it.Unit)
		e.CreateAttr("stock", strconv.FormatInt(it.CurrentStock, 10))
		e.CreateAttr("unitCost", it.UnitCost.StringFixed(4))
		e.CreateAttr("value", it.TotalValue.StringFixed(2))
	}

	def := root.CreateElement("Deficits")
	def.CreateAttr("items", strconv.Itoa(report.Deficits.TotalDeficitItems))
	def.CreateAttr("value", report.Deficits.TotalDeficitValue.StringFixed(2))
	addDeficits := func(list []dto.StockDeficitDTO, severity string) {
		for _, d := range list {
			e := def.CreateElement("Deficit")
			e.CreateAttr("severity", severity)
			e.CreateAttr("id", d.ItemID)
			e.CreateAttr("name", d.ItemName)
			e.CreateAttr("amount", strconv.FormatInt(d.DeficitAmount, 10))
		}
	}
	addDeficits(report.Deficits.CriticalDeficits, inventory.SeverityCritical)
	addDeficits(report.Deficits.ModerateDeficits, inventory.SeverityModerate)
	return root
}

// canonicalDigest SHA-256 (hex) de la forma C14N del elemento.
func canonicalDigest(root *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(root.Copy())
	raw, err := doc.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("snapshot: serializar: %w", err)
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("snapshot: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

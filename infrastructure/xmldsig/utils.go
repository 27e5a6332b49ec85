package xmldsig

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"

	"github.com/lb-conn/xml-signer/application/models"
)

// parseDocument lê o XML com o etree (encoding/xml por baixo): entidades externas
// nunca são resolvidas e um DOCTYPE interno é preservado como diretiva.
// Entidades gerais internas declaradas no DOCTYPE são expandidas.
// O conteúdo do XML nunca é anexado ao erro.
func parseDocument(xmlData []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if entities := internalEntities(xmlData); len(entities) > 0 {
		doc.ReadSettings.Entity = entities
	}
	if err := doc.ReadFromBytes(xmlData); err != nil {
		return nil, models.XMLParseError("Failed to parse XML", err)
	}
	if doc.Root() == nil {
		return nil, models.XMLParseError("Failed to parse XML: document has no root element", nil)
	}
	return doc, nil
}

// Somente <!ENTITY nome "literal">: declarações SYSTEM/PUBLIC e de parâmetro (%) não casam.
var entityDeclRegexp = regexp.MustCompile(`<!ENTITY\s+([A-Za-z_:][-A-Za-z0-9._:]*)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// internalEntities lê as declarações de entidades internas do DOCTYPE, que vem
// antes do elemento raiz. Literais com marcação ou referências são ignorados,
// e a entidade continua indefinida.
func internalEntities(xmlData []byte) map[string]string {
	dec := xml.NewDecoder(bytes.NewReader(xmlData))
	entities := map[string]string{}

	for {
		tok, err := dec.RawToken()
		if err != nil {
			break
		}
		if _, ok := tok.(xml.StartElement); ok {
			break
		}
		dir, ok := tok.(xml.Directive)
		if !ok || !strings.HasPrefix(string(dir), "DOCTYPE") {
			continue
		}
		for _, m := range entityDeclRegexp.FindAllStringSubmatch(string(dir), -1) {
			value := m[2] + m[3]
			if strings.ContainsAny(value, "<&%") {
				continue
			}
			entities[m[1]] = value
		}
	}
	return entities
}

// findSignatureElement retorna o primeiro <Signature> do namespace XML-DSig em ordem de documento.
func findSignatureElement(el *etree.Element) *etree.Element {
	if isDSigElement(el, dsig.SignatureTag) {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findSignatureElement(child); found != nil {
			return found
		}
	}
	return nil
}

// findChildDSig retorna o primeiro filho direto de el com a tag no namespace XML-DSig.
func findChildDSig(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if isDSigElement(child, tag) {
			return child
		}
	}
	return nil
}

func isDSigElement(el *etree.Element, tag string) bool {
	return el.Tag == tag && el.NamespaceURI() == dsig.Namespace
}

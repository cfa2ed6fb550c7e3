package order

// TermsText is the acceptance terms presented to the client at signing time.
// The text is business copy shown verbatim to Brazilian customers and is
// frozen into the order's accept-text snapshot together with the signer's
// name and document.
const TermsText = `Termo de ciência e aceite – IDEAL COLLOR

Declaro que estou ciente e de acordo com a cor, textura, acabamento e metragem especificados nesta Ordem de Serviço.

Estou ciente de que, por se tratar de produto fabricado sob encomenda, após a fabricação na cor escolhida não há possibilidade de troca, cancelamento ou alteração da cor.

Estou ciente também de que, em razão das características dos materiais e do processo produtivo, podem ocorrer pequenas variações de tonalidade entre lotes, não sendo possível garantir reprodução absolutamente idêntica em caso de metragem adicional solicitada posteriormente.

Declaro ainda que as informações de metragem e local de aplicação fornecidas são de minha responsabilidade, bem como qualquer necessidade de metragem extra decorrente de erro de cálculo, remanejamento ou alterações na obra.`

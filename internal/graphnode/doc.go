// Package graphnode — тонкий JSON-RPC шлюз к node-management endpoint.
//
// Три операции:
//   - subgraph_create{name}
//   - subgraph_deploy{name, ipfs_hash, node_id} — с жёстким таймаутом (120s)
//   - subgraph_reassign{node_id, ipfs_hash}
//
// Ошибки делятся на два уровня:
//   - RemoteError — endpoint ответил {error:{code,message}}
//   - TransportError — сеть, таймаут (ErrTimeout), некорректный ответ
//
// Classify переводит ошибку в Kind по тексту сообщения; это единственное
// место, знающее формулировки endpoint.
package graphnode
